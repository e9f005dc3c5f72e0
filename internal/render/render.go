// Package render derives the textual projections of a canonical
// transcript. Every rendering is a pure function of the Transcript:
// rendering the same transcript twice is byte-identical, and no
// rendering is ever read back as a source of truth.
package render

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/krissiernir/IceScriber/internal/models"
)

// Lines per paragraph in the markdown rendering; approximates ~25s of
// narration at typical segment granularity.
const paragraphLines = 5

// FormatTimestamp converts seconds to zero-padded HH:MM:SS.
func FormatTimestamp(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// Timestamped renders one line per segment: [HH:MM:SS] text.
func Timestamped(t *models.Transcript) string {
	lines := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		lines = append(lines, fmt.Sprintf("[%s] %s", FormatTimestamp(seg.Start), seg.Text))
	}
	return strings.Join(lines, "\n")
}

// Markdown renders timestamp-free prose, grouping every fixed run of
// non-empty segment lines into one paragraph separated by blank lines.
func Markdown(t *models.Transcript) string {
	var paragraphs []string
	var current []string

	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		current = append(current, text)
		if len(current) >= paragraphLines {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}

// LLMText renders one continuous line of text with single spaces,
// stripped of timestamps and with runs of spaces collapsed. Minimal
// preprocessing for feeding the transcript to a language model.
func LLMText(t *models.Transcript) string {
	var parts []string
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	out := strings.Join(parts, " ")
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}

// ReconstructPunctuation re-segments a block of raw model output into
// sentences, adds terminal periods where missing and capitalizes
// sentence starts. A sentence boundary is declared after the current
// word when the next word starts with an uppercase letter (or the text
// ends), provided the sentence so far holds more than two words. The
// length guard avoids splitting on short fragments and proper nouns.
// Capitalized words mid-sentence still cause splits; that loss is
// inherent to the heuristic.
func ReconstructPunctuation(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var sentences []string
	var current []string
	for i, word := range words {
		current = append(current, word)
		isLast := i == len(words)-1
		nextCapitalized := false
		if i+1 < len(words) {
			r, _ := utf8.DecodeRuneInString(words[i+1])
			nextCapitalized = unicode.IsUpper(r)
		}
		if (isLast || nextCapitalized) && len(current) > 2 {
			sentences = append(sentences, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}

	formatted := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		if !strings.HasSuffix(sent, ".") && !strings.HasSuffix(sent, "?") &&
			!strings.HasSuffix(sent, "!") && !strings.HasSuffix(sent, ",") &&
			!strings.HasSuffix(sent, ":") && !strings.HasSuffix(sent, ";") {
			sent += "."
		}
		r, size := utf8.DecodeRuneInString(sent)
		if unicode.IsLower(r) {
			sent = string(unicode.ToUpper(r)) + sent[size:]
		}
		formatted = append(formatted, sent)
	}
	return strings.Join(formatted, " ")
}
