package pipeline

import (
	"strings"

	"github.com/krissiernir/IceScriber/internal/models"
)

// WindowTranscript is the raw model output for a single window. It is
// held only long enough to resolve overlap against its successor.
type WindowTranscript struct {
	StartS float64
	Text   string
}

// Assembler folds overlap-trimmed window transcripts into the final
// segment sequence.
type Assembler struct {
	Resolver    Resolver
	WindowSizeS float64
}

// Stats reports resolver outcomes for one assembly run. A fallback is
// a window pair where no alignment cleared the match threshold and
// the whole current window was kept as new content.
type Stats struct {
	WindowPairs int
	Fallbacks   int
}

// Assemble walks the window transcripts in order and emits segments.
// A segment boundary is created whenever a window contributes new
// (non-duplicated) text; the open segment is closed at that window's
// start time. A window whose text is pure overlap contributes nothing
// and creates no boundary. The final segment, having no successor to
// bound it, is closed at its own start plus the window size.
func (a Assembler) Assemble(transcripts []WindowTranscript) ([]models.Segment, Stats) {
	var stats Stats
	if len(transcripts) == 0 {
		return nil, stats
	}

	var segments []models.Segment
	currentStart := transcripts[0].StartS
	currentText := transcripts[0].Text

	for i := 1; i < len(transcripts); i++ {
		skip := a.Resolver.SkipWords(transcripts[i-1].Text, transcripts[i].Text)
		stats.WindowPairs++
		if skip == 0 {
			stats.Fallbacks++
		}
		words := strings.Fields(transcripts[i].Text)
		if skip >= len(words) {
			continue
		}
		newText := strings.Join(words[skip:], " ")
		if strings.TrimSpace(newText) == "" {
			continue
		}

		if strings.TrimSpace(currentText) != "" {
			segments = append(segments, models.Segment{
				Start: currentStart,
				End:   transcripts[i].StartS,
				Text:  strings.TrimSpace(currentText),
			})
		}
		currentStart = transcripts[i].StartS
		currentText = newText
	}

	if strings.TrimSpace(currentText) != "" {
		segments = append(segments, models.Segment{
			Start: currentStart,
			End:   currentStart + a.WindowSizeS,
			Text:  strings.TrimSpace(currentText),
		})
	}
	return segments, stats
}
