package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// buildWAV assembles a minimal PCM16 RIFF/WAVE file from interleaved
// samples.
func buildWAV(sampleRate, channels int, frames []int16) []byte {
	dataLen := 2 * len(frames)
	buf := make([]byte, 0, 44+dataLen)

	appendU32 := func(b []byte, v uint32) []byte {
		return binary.LittleEndian.AppendUint32(b, v)
	}
	appendU16 := func(b []byte, v uint16) []byte {
		return binary.LittleEndian.AppendUint16(b, v)
	}

	buf = append(buf, "RIFF"...)
	buf = appendU32(buf, uint32(36+dataLen))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = appendU32(buf, 16)
	buf = appendU16(buf, 1) // PCM
	buf = appendU16(buf, uint16(channels))
	buf = appendU32(buf, uint32(sampleRate))
	buf = appendU32(buf, uint32(sampleRate*channels*2))
	buf = appendU16(buf, uint16(channels*2))
	buf = appendU16(buf, 16)

	buf = append(buf, "data"...)
	buf = appendU32(buf, uint32(dataLen))
	for _, s := range frames {
		buf = appendU16(buf, uint16(s))
	}
	return buf
}

func TestLoadWAV_Mono(t *testing.T) {
	frames := []int16{0, 16384, -16384, 32767, -32768}
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := os.WriteFile(path, buildWAV(16000, 1, frames), 0o644); err != nil {
		t.Fatal(err)
	}

	stream, err := LoadWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if stream.SampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", stream.SampleRate)
	}
	if len(stream.Samples) != len(frames) {
		t.Fatalf("expected %d samples, got %d", len(frames), len(stream.Samples))
	}

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1}
	for i, w := range want {
		if math.Abs(float64(stream.Samples[i]-w)) > 1e-6 {
			t.Errorf("sample %d: expected %f, got %f", i, w, stream.Samples[i])
		}
	}
}

func TestLoadWAV_StereoDownmix(t *testing.T) {
	// Interleaved L/R frames; each output sample is the channel mean.
	frames := []int16{16384, -16384, 32766, 0}
	path := filepath.Join(t.TempDir(), "stereo.wav")
	if err := os.WriteFile(path, buildWAV(8000, 2, frames), 0o644); err != nil {
		t.Fatal(err)
	}

	stream, err := LoadWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(stream.Samples) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(stream.Samples))
	}
	if math.Abs(float64(stream.Samples[0])) > 1e-6 {
		t.Errorf("expected first downmixed sample 0, got %f", stream.Samples[0])
	}
	if math.Abs(float64(stream.Samples[1])-32766.0/32768.0/2) > 1e-6 {
		t.Errorf("unexpected second downmixed sample %f", stream.Samples[1])
	}
}

func TestLoadWAV_Duration(t *testing.T) {
	frames := make([]int16, 8000*3)
	path := filepath.Join(t.TempDir(), "three-seconds.wav")
	if err := os.WriteFile(path, buildWAV(8000, 1, frames), 0o644); err != nil {
		t.Fatal(err)
	}

	stream, err := LoadWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if d := stream.DurationS(); d != 3 {
		t.Errorf("expected 3 second duration, got %f", d)
	}
}

func TestLoadWAV_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.wav")
	if err := os.WriteFile(path, []byte("this is not audio at all, sorry"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWAV(path); !errors.Is(err, ErrNotWAV) {
		t.Errorf("expected ErrNotWAV, got %v", err)
	}
}

func TestLoadWAV_RejectsNonPCM(t *testing.T) {
	data := buildWAV(8000, 1, []int16{1, 2, 3})
	// Flip the format tag to IEEE float.
	binary.LittleEndian.PutUint16(data[20:], 3)

	path := filepath.Join(t.TempDir(), "float.wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWAV(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadWAV_MissingFile(t *testing.T) {
	if _, err := LoadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}
