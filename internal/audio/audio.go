// Package audio loads audio files into mono float sample streams.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Stream is a mono sample sequence with its sample rate. It is
// immutable once loaded and owned by the batch driver for the
// duration of one file's processing.
type Stream struct {
	Samples    []float32
	SampleRate int
}

// DurationS returns the stream length in seconds.
func (s *Stream) DurationS() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

var (
	ErrNotWAV            = errors.New("not a RIFF/WAVE file")
	ErrUnsupportedFormat = errors.New("unsupported WAV encoding (need 16-bit PCM)")
)

// LoadWAV reads a 16-bit PCM WAV file and returns a mono stream.
// Multi-channel audio is downmixed by averaging channels. Samples are
// normalized to [-1, 1].
func LoadWAV(path string) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	return decodeWAV(data)
}

func decodeWAV(data []byte) (*Stream, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcm           []byte
		haveFmt       bool
	)

	// Walk the RIFF chunks; encoders emit them in varying order and
	// may insert LIST/INFO chunks between fmt and data.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrNotWAV
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 { // PCM
				return nil, ErrUnsupportedFormat
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned.
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt || pcm == nil {
		return nil, ErrNotWAV
	}
	if bitsPerSample != 16 || channels < 1 {
		return nil, ErrUnsupportedFormat
	}

	frameBytes := 2 * channels
	frames := len(pcm) / frameBytes
	samples := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			v := int16(binary.LittleEndian.Uint16(pcm[f*frameBytes+2*c:]))
			sum += float32(v) / 32768.0
		}
		samples[f] = sum / float32(channels)
	}

	return &Stream{Samples: samples, SampleRate: sampleRate}, nil
}
