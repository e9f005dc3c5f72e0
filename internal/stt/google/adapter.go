// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Adapter implements stt.Adapter using Google Cloud Speech-to-Text
// with one synchronous Recognize call per audio window.
type Adapter struct {
	client   *speech.Client
	language string
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, language string) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &Adapter{client: c, language: language}, nil
}

// Transcribe sends one window of mono samples as LINEAR16 audio and
// returns the concatenated recognition results.
func (a *Adapter) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    a.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: encodeLinear16(samples),
			},
		},
	})
	if err != nil {
		if status.Code(err) == codes.InvalidArgument {
			return "", fmt.Errorf("rejected audio window (%d samples @ %d Hz): %w", len(samples), sampleRate, err)
		}
		return "", fmt.Errorf("recognize: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		parts = append(parts, result.Alternatives[0].Transcript)
	}
	return strings.Join(parts, " "), nil
}

// Close releases the underlying gRPC client.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// encodeLinear16 converts normalized float samples to little-endian
// 16-bit PCM, clamping out-of-range values.
func encodeLinear16(samples []float32) []byte {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(s*32767)))
	}
	return buf
}
