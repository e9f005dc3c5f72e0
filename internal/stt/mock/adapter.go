// Package mock provides a deterministic STT adapter for testing and
// offline runs without cloud credentials. It replays a scripted
// sequence of window transcripts, one per Transcribe call, including
// the boundary overlap a real model produces on overlapping windows.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultScript simulates a narrator read with a 5-second stride:
// each window repeats the tail of its predecessor before adding new
// words, exactly the shape the overlap resolver has to untangle.
var DefaultScript = []string{
	"once upon a time there lived a fisherman on the northern shore of the fjord",
	"a fisherman on the northern shore of the fjord who rowed out alone every morning before the light",
	"who rowed out alone every morning before the light and spoke to no one about what he saw there",
	"and spoke to no one about what he saw there until the winter his daughter followed him onto the water",
}

// Adapter implements stt.Adapter with scripted responses. Safe for
// concurrent use, though the pipeline calls it sequentially.
type Adapter struct {
	mu     sync.Mutex
	script []string
	next   int
	calls  int
	delay  time.Duration
	closed bool
}

// New creates a mock adapter that replays script in order, one window
// per call, and returns empty text once the script is exhausted.
func New(script []string) *Adapter {
	if len(script) == 0 {
		script = DefaultScript
	}
	return &Adapter{script: script}
}

// WithDelay makes every Transcribe call take at least d, simulating a
// slow model for cancellation tests.
func (a *Adapter) WithDelay(d time.Duration) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
	return a
}

// ScriptFromText slices a source text into overlapping window scripts:
// each window holds windowWords words and repeats the last
// overlapWords words of its predecessor. Useful for round-trip tests.
func ScriptFromText(text string, windowWords, overlapWords int) []string {
	words := strings.Fields(text)
	step := windowWords - overlapWords
	if step < 1 {
		step = 1
	}

	var script []string
	for start := 0; start < len(words); start += step {
		end := start + windowWords
		if end > len(words) {
			end = len(words)
		}
		script = append(script, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return script
}

// Transcribe returns the next scripted window text.
func (a *Adapter) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	a.mu.Lock()
	delay := a.delay
	a.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.closed || a.next >= len(a.script) {
		return "", nil
	}
	text := a.script[a.next]
	a.next++
	return text, nil
}

// Calls reports how many Transcribe invocations have been made.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Close ends the mock session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
