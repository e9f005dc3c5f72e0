// Package events publishes transcript events for downstream indexing.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/krissiernir/IceScriber/internal/models"
	"github.com/krissiernir/IceScriber/internal/observability/metrics"
)

// SegmentEvent is emitted once per transcript segment after the
// canonical artifact has been persisted.
type SegmentEvent struct {
	EventType string  `json:"eventType"`
	AudioFile string  `json:"audioFile"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
	Timestamp int64   `json:"timestamp"`
}

// FileEvent is emitted once per fully processed audio file.
type FileEvent struct {
	EventType    string  `json:"eventType"`
	AudioFile    string  `json:"audioFile"`
	Language     string  `json:"language"`
	Model        string  `json:"model"`
	DurationS    float64 `json:"durationS"`
	SegmentCount int     `json:"segmentCount"`
	Timestamp    int64   `json:"timestamp"`
}

// Publisher publishes transcript events to separate Kafka topics.
type Publisher struct {
	writerSegments *kafka.Writer
	writerFiles    *kafka.Writer
	principal      string
	topicSegments  string
	topicFiles     string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicSegments string
	TopicFiles    string
	Principal     string
	Enabled       bool
}

// New creates a Kafka publisher with separate topics for per-segment
// and per-file events. With Kafka disabled, events are logged only.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		p := &Publisher{enabled: false, metrics: m}
		if cfg != nil {
			p.principal = cfg.Principal
			p.topicSegments = cfg.TopicSegments
			p.topicFiles = cfg.TopicFiles
		}
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerSegments := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicSegments,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
	writerFiles := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicFiles,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicSegments", cfg.TopicSegments).
		Str("topicFiles", cfg.TopicFiles).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerSegments: writerSegments,
		writerFiles:    writerFiles,
		principal:      cfg.Principal,
		topicSegments:  cfg.TopicSegments,
		topicFiles:     cfg.TopicFiles,
		enabled:        true,
		metrics:        m,
	}
}

// PublishTranscript publishes one event per segment followed by the
// file-completed event. Keys carry the audio file name so all events
// for one file land on the same partition, in order.
func (p *Publisher) PublishTranscript(ctx context.Context, t *models.Transcript) error {
	now := time.Now().UnixMilli()
	for _, seg := range t.Segments {
		ev := SegmentEvent{
			EventType: "transcript.segment",
			AudioFile: t.Metadata.AudioFile,
			Start:     seg.Start,
			End:       seg.End,
			Text:      seg.Text,
			Timestamp: now,
		}
		if err := p.publish(ctx, p.writerSegments, p.topicSegments, t.Metadata.AudioFile, ev); err != nil {
			return err
		}
	}

	fileEv := FileEvent{
		EventType:    "transcript.file.completed",
		AudioFile:    t.Metadata.AudioFile,
		Language:     t.Metadata.Language,
		Model:        t.Metadata.Model,
		DurationS:    t.Metadata.DurationS,
		SegmentCount: len(t.Segments),
		Timestamp:    time.Now().UnixMilli(),
	}
	return p.publish(ctx, p.writerFiles, p.topicFiles, t.Metadata.AudioFile, fileEv)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerSegments != nil {
		if e := p.writerSegments.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing segments writer")
			err = e
		}
	}
	if p.writerFiles != nil {
		if e := p.writerFiles.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing files writer")
			err = e
		}
	}
	return err
}
