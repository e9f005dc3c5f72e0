// Package models defines the canonical transcript data structures.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Segment is a time-bounded, deduplicated unit of transcript text.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Metadata describes how a transcript was produced.
type Metadata struct {
	AudioFile      string  `json:"audio_file"`
	Language       string  `json:"language"`
	Model          string  `json:"model"`
	WindowSeconds  float64 `json:"window_size_seconds"`
	StrideSeconds  float64 `json:"stride_seconds"`
	OverlapSeconds float64 `json:"overlap_seconds"`
	DurationS      float64 `json:"duration_s,omitempty"`
}

// Transcript is the canonical artifact for one audio file. It is the
// single source of truth; every textual rendering is derived from it
// and never read back to reconstruct state.
type Transcript struct {
	Metadata Metadata  `json:"metadata"`
	Segments []Segment `json:"segments"`
}

// Validation errors for transcript invariants.
var (
	ErrEmptySegmentText  = errors.New("segment has empty text")
	ErrSegmentTimeOrder  = errors.New("segment end must be after start")
	ErrSegmentsUnordered = errors.New("segments out of chronological order")
)

// Validate checks the segment invariants: non-empty text, end > start,
// and non-decreasing start times across the sequence.
func (t *Transcript) Validate() error {
	prevStart := -1.0
	for i, seg := range t.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			return fmt.Errorf("segment %d: %w", i, ErrEmptySegmentText)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf("segment %d [%.2f, %.2f]: %w", i, seg.Start, seg.End, ErrSegmentTimeOrder)
		}
		if seg.Start < prevStart {
			return fmt.Errorf("segment %d: %w", i, ErrSegmentsUnordered)
		}
		prevStart = seg.Start
	}
	return nil
}

// MarshalJSONArtifact serializes the transcript as the canonical JSON
// document: UTF-8, two-space indent, non-ASCII characters left
// unescaped so Icelandic text stays readable on disk.
func (t *Transcript) MarshalJSONArtifact() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseJSONArtifact reads a canonical JSON document back into a Transcript.
func ParseJSONArtifact(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript artifact: %w", err)
	}
	return &t, nil
}
