package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krissiernir/IceScriber/internal/models"
	"github.com/krissiernir/IceScriber/internal/observability/logging"
	"github.com/krissiernir/IceScriber/internal/observability/metrics"
	"github.com/krissiernir/IceScriber/internal/render"
	"github.com/krissiernir/IceScriber/internal/stt"
)

// Configuration errors, rejected at pipeline construction before any
// audio is touched.
var (
	ErrInvalidWindowSize = errors.New("window size must be positive")
	ErrInvalidStride     = errors.New("stride must be positive")
)

// Config holds the per-file pipeline parameters.
type Config struct {
	WindowSizeS float64
	StrideS     float64
	Language    string
	Model       string
	Provider    string
}

// Validate rejects degenerate window parameters. A stride at or above
// the window size is allowed: the windows simply stop overlapping and
// the resolver finds zero overlap.
func (c Config) Validate() error {
	if c.WindowSizeS <= 0 {
		return fmt.Errorf("%w: %f", ErrInvalidWindowSize, c.WindowSizeS)
	}
	if c.StrideS <= 0 {
		return fmt.Errorf("%w: %f", ErrInvalidStride, c.StrideS)
	}
	return nil
}

// Pipeline runs the sliding-window transcription for one audio file:
// windowing, per-window transcription, overlap resolution and segment
// assembly. Windows are transcribed strictly in order because resolving
// window i needs window i-1's text.
type Pipeline struct {
	cfg      Config
	adapter  stt.Adapter
	resolver Resolver
	metrics  *metrics.Metrics
}

// New constructs a Pipeline, validating the configuration.
func New(cfg Config, adapter stt.Adapter, m *metrics.Metrics) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Pipeline{
		cfg:      cfg,
		adapter:  adapter,
		resolver: NewResolver(),
		metrics:  m,
	}, nil
}

// Run transcribes one audio file and returns its canonical transcript.
// Cancellation is honored at window boundaries: an aborted run returns
// an error and no transcript, never a partial one.
func (p *Pipeline) Run(ctx context.Context, audioFile string, samples []float32, sampleRate int) (*models.Transcript, error) {
	logger := logging.WithFile("pipeline", audioFile)

	windows := Windows(samples, sampleRate, p.cfg.WindowSizeS, p.cfg.StrideS)
	logger.Info().
		Int("windows", len(windows)).
		Float64("windowSizeS", p.cfg.WindowSizeS).
		Float64("strideS", p.cfg.StrideS).
		Msg("Sliding window transcription started")

	transcripts := make([]WindowTranscript, 0, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("transcription canceled at window %d: %w", i, err)
		}

		start := time.Now()
		text, err := p.adapter.Transcribe(ctx, w.Samples, sampleRate)
		p.metrics.STTLatency.WithLabelValues(p.cfg.Provider).Observe(time.Since(start).Seconds())
		if err != nil {
			p.metrics.STTErrors.WithLabelValues(p.cfg.Provider).Inc()
			return nil, fmt.Errorf("transcribe window %d (%.1fs): %w", i, w.StartS, err)
		}
		p.metrics.WindowsTranscribed.Inc()

		transcripts = append(transcripts, WindowTranscript{StartS: w.StartS, Text: text})
	}

	assembler := Assembler{Resolver: p.resolver, WindowSizeS: p.cfg.WindowSizeS}
	segments, stats := assembler.Assemble(transcripts)
	p.metrics.OverlapResolutions.WithLabelValues("matched").Add(float64(stats.WindowPairs - stats.Fallbacks))
	p.metrics.OverlapResolutions.WithLabelValues("fallback").Add(float64(stats.Fallbacks))
	p.metrics.SegmentsEmitted.Add(float64(len(segments)))

	// Raw model output carries no punctuation; reconstruct it per
	// segment before the transcript is frozen.
	for i := range segments {
		segments[i].Text = render.ReconstructPunctuation(segments[i].Text)
	}

	transcript := &models.Transcript{
		Metadata: models.Metadata{
			AudioFile:      audioFile,
			Language:       p.cfg.Language,
			Model:          p.cfg.Model,
			WindowSeconds:  p.cfg.WindowSizeS,
			StrideSeconds:  p.cfg.StrideS,
			OverlapSeconds: p.cfg.WindowSizeS - p.cfg.StrideS,
			DurationS:      float64(len(samples)) / float64(sampleRate),
		},
		Segments: segments,
	}
	if err := transcript.Validate(); err != nil {
		return nil, fmt.Errorf("assembled transcript failed validation: %w", err)
	}

	logger.Info().
		Int("segments", len(segments)).
		Int("resolverFallbacks", stats.Fallbacks).
		Msg("Transcript assembled")
	return transcript, nil
}
