package render

import (
	"strings"
	"testing"

	"github.com/krissiernir/IceScriber/internal/models"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{3661, "01:01:01"},
		{59.9, "00:00:59"},
		{60, "00:01:00"},
		{3599, "00:59:59"},
		{7325, "02:02:05"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func sampleTranscript() *models.Transcript {
	return &models.Transcript{
		Metadata: models.Metadata{AudioFile: "001_chapter.wav", Language: "is-IS"},
		Segments: []models.Segment{
			{Start: 0, End: 5, Text: "Fyrsti kaflinn hefst hér."},
			{Start: 5, End: 10, Text: "Og heldur áfram."},
			{Start: 10, End: 15, Text: "Þriðja setningin."},
			{Start: 15, End: 20, Text: "Fjórða setningin."},
			{Start: 20, End: 25, Text: "Fimmta setningin."},
			{Start: 25, End: 30, Text: "Sjötta setningin."},
			{Start: 3661, End: 3690, Text: "Löngu seinna."},
		},
	}
}

func TestTimestamped(t *testing.T) {
	out := Timestamped(sampleTranscript())
	lines := strings.Split(out, "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}
	if lines[0] != "[00:00:00] Fyrsti kaflinn hefst hér." {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[6] != "[01:01:01] Löngu seinna." {
		t.Errorf("unexpected last line: %q", lines[6])
	}
}

func TestMarkdown_GroupsFiveLinesPerParagraph(t *testing.T) {
	out := Markdown(sampleTranscript())
	paragraphs := strings.Split(out, "\n\n")
	if len(paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paragraphs))
	}
	if strings.Contains(out, "[") {
		t.Error("markdown rendering must not contain timestamps")
	}
	if !strings.HasPrefix(paragraphs[0], "Fyrsti kaflinn") {
		t.Errorf("unexpected first paragraph: %q", paragraphs[0])
	}
	if paragraphs[1] != "Sjötta setningin. Löngu seinna." {
		t.Errorf("unexpected second paragraph: %q", paragraphs[1])
	}
}

func TestLLMText_CollapsesWhitespace(t *testing.T) {
	transcript := &models.Transcript{
		Segments: []models.Segment{
			{Start: 0, End: 5, Text: "orð  með   aukabilum"},
			{Start: 5, End: 10, Text: " og meira "},
		},
	}
	if got := LLMText(transcript); got != "orð með aukabilum og meira" {
		t.Errorf("unexpected flat text: %q", got)
	}
}

func TestRenderings_Idempotent(t *testing.T) {
	transcript := sampleTranscript()
	renderings := map[string]func(*models.Transcript) string{
		"timestamped": Timestamped,
		"markdown":    Markdown,
		"llm":         LLMText,
	}
	for name, fn := range renderings {
		if first, second := fn(transcript), fn(transcript); first != second {
			t.Errorf("%s rendering is not idempotent", name)
		}
	}
	if first, second := ReconstructPunctuation("the cat sat The dog ran"), ReconstructPunctuation("the cat sat The dog ran"); first != second {
		t.Error("punctuation reconstruction is not idempotent")
	}
}

func TestReconstructPunctuation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"capitalization boundary",
			"the cat sat The dog ran",
			"The cat sat. The dog ran.",
		},
		{
			"short fragments not split",
			"so Then he left",
			// "so" alone is below the length guard, so "Then" does
			// not open a new sentence.
			"So Then he left.",
		},
		{
			"existing punctuation kept",
			"hann fór heim, Svo kom hann aftur",
			"Hann fór heim, Svo kom hann aftur.",
		},
		{
			"empty input",
			"",
			"",
		},
		{
			"single word",
			"halló",
			"Halló.",
		},
		{
			"uppercase non-ascii starts sentence",
			"fyrst kom hún heim Þá byrjaði veislan",
			"Fyrst kom hún heim. Þá byrjaði veislan.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReconstructPunctuation(tt.in); got != tt.want {
				t.Errorf("ReconstructPunctuation(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
