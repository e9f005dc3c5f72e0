package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/krissiernir/IceScriber/internal/stt/mock"
)

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero window", Config{WindowSizeS: 0, StrideS: 5}, ErrInvalidWindowSize},
		{"negative window", Config{WindowSizeS: -1, StrideS: 5}, ErrInvalidWindowSize},
		{"zero stride", Config{WindowSizeS: 30, StrideS: 0}, ErrInvalidStride},
		{"negative stride", Config{WindowSizeS: 30, StrideS: -5}, ErrInvalidStride},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, mock.New(nil), nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	// Stride at or above window size is degenerate but accepted.
	if _, err := New(Config{WindowSizeS: 5, StrideS: 10}, mock.New(nil), nil); err != nil {
		t.Errorf("expected stride >= window size to be accepted, got %v", err)
	}
}

func TestPipeline_RunAssemblesTranscript(t *testing.T) {
	source := "long before the road came the only way between the fjords was over " +
		"the high pass and travellers left the farms at first light to cross it " +
		"before the weather could turn against them on the bare mountain"
	adapter := mock.New(mock.ScriptFromText(source, 14, 7))

	p, err := New(Config{
		WindowSizeS: 10,
		StrideS:     5,
		Language:    "is-IS",
		Model:       "test-model",
		Provider:    "mock",
	}, adapter, nil)
	if err != nil {
		t.Fatal(err)
	}

	// 30 seconds at 1 kHz gives windows at 0,5,10,15,20,25; the mock
	// script covers the first five and the sixth comes back empty,
	// which the assembler treats as pure overlap.
	samples := make([]float32, 30*1000)
	transcript, err := p.Run(context.Background(), "001_chapter.wav", samples, 1000)
	if err != nil {
		t.Fatal(err)
	}

	if transcript.Metadata.AudioFile != "001_chapter.wav" {
		t.Errorf("unexpected audio file metadata: %q", transcript.Metadata.AudioFile)
	}
	if transcript.Metadata.WindowSeconds != 10 || transcript.Metadata.StrideSeconds != 5 {
		t.Errorf("unexpected window metadata: %+v", transcript.Metadata)
	}
	if transcript.Metadata.OverlapSeconds != 5 {
		t.Errorf("expected overlap 5, got %f", transcript.Metadata.OverlapSeconds)
	}
	if transcript.Metadata.DurationS != 30 {
		t.Errorf("expected duration 30, got %f", transcript.Metadata.DurationS)
	}
	if len(transcript.Segments) == 0 {
		t.Fatal("expected segments")
	}
	for i, seg := range transcript.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			t.Errorf("segment %d has empty text", i)
		}
	}
}

func TestPipeline_RunIsDeterministic(t *testing.T) {
	source := "the letters were kept in a tin box under the floorboards and nobody " +
		"opened them again until the house was sold many years later"

	run := func() string {
		adapter := mock.New(mock.ScriptFromText(source, 12, 6))
		p, err := New(Config{WindowSizeS: 10, StrideS: 5, Provider: "mock"}, adapter, nil)
		if err != nil {
			t.Fatal(err)
		}
		tr, err := p.Run(context.Background(), "a.wav", make([]float32, 20*1000), 1000)
		if err != nil {
			t.Fatal(err)
		}
		data, err := tr.MarshalJSONArtifact()
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	if first, second := run(), run(); first != second {
		t.Error("two runs over the same input produced different canonical artifacts")
	}
}

func TestPipeline_CancellationAbortsWithoutTranscript(t *testing.T) {
	adapter := mock.New(nil)
	p, err := New(Config{WindowSizeS: 10, StrideS: 5, Provider: "mock"}, adapter, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transcript, err := p.Run(ctx, "a.wav", make([]float32, 30*1000), 1000)
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if transcript != nil {
		t.Error("canceled run must not return a transcript")
	}
}

type failingAdapter struct{ after int }

func (f *failingAdapter) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if f.after == 0 {
		return "", errors.New("model exploded")
	}
	f.after--
	return "some words from the window", nil
}

func (f *failingAdapter) Close() error { return nil }

func TestPipeline_AdapterFailureAbortsFile(t *testing.T) {
	p, err := New(Config{WindowSizeS: 10, StrideS: 5, Provider: "mock"}, &failingAdapter{after: 2}, nil)
	if err != nil {
		t.Fatal(err)
	}

	transcript, err := p.Run(context.Background(), "a.wav", make([]float32, 30*1000), 1000)
	if err == nil {
		t.Fatal("expected adapter failure to abort the run")
	}
	if transcript != nil {
		t.Error("failed run must not return a partial transcript")
	}
}
