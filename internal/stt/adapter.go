// Package stt defines the interface for Speech-to-Text adapters.
package stt

import "context"

// Adapter defines the interface for STT providers (Google, mock, ...).
// One call transcribes one audio window; the pipeline owns window
// ordering and never issues concurrent calls against a single adapter.
type Adapter interface {
	// Transcribe converts one window of mono samples to raw text.
	// The call may be slow; it must honor ctx cancellation. An empty
	// or garbled result is not an error; the overlap resolver's
	// threshold logic absorbs it downstream.
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error)

	// Close releases provider resources.
	Close() error
}
