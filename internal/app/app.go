// Package app wires configuration into the concrete pipeline,
// adapter, publisher and driver instances. The loaded STT resource is
// owned here and injected into per-file pipelines; nothing hangs off
// global mutable state.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/krissiernir/IceScriber/internal/batch"
	"github.com/krissiernir/IceScriber/internal/config"
	"github.com/krissiernir/IceScriber/internal/events"
	"github.com/krissiernir/IceScriber/internal/observability/logging"
	"github.com/krissiernir/IceScriber/internal/observability/metrics"
	"github.com/krissiernir/IceScriber/internal/pipeline"
	"github.com/krissiernir/IceScriber/internal/stt"
	"github.com/krissiernir/IceScriber/internal/stt/google"
	"github.com/krissiernir/IceScriber/internal/stt/mock"
)

// Application holds process-wide state for one CLI invocation.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	adapter   stt.Adapter
	publisher *events.Publisher
}

// New constructs an Application from the provided configuration,
// initializing logging.
func New(cfg *config.Config) *Application {
	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	a := &Application{
		StartupTime: time.Now().UTC(),
		Logger:      logging.WithComponent("application"),
		Cfg:         cfg,
	}
	a.Logger.Info().
		Str("provider", cfg.STT.Provider).
		Str("language", cfg.STT.Language).
		Msg("IceScriber application created")
	return a
}

// Adapter returns the configured STT adapter, constructing it on
// first use. The adapter is shared across files so a loaded model (or
// an open cloud client) is reused for the whole batch.
func (a *Application) Adapter(ctx context.Context) (stt.Adapter, error) {
	if a.adapter != nil {
		return a.adapter, nil
	}
	switch a.Cfg.STT.Provider {
	case "google":
		ad, err := google.New(ctx, a.Cfg.STT.Language)
		if err != nil {
			return nil, err
		}
		a.adapter = ad
	case "mock", "":
		a.adapter = mock.New(nil)
	default:
		return nil, fmt.Errorf("unknown STT provider %q", a.Cfg.STT.Provider)
	}
	return a.adapter, nil
}

// Publisher returns the Kafka publisher (log-only when disabled).
func (a *Application) Publisher() *events.Publisher {
	if a.publisher == nil {
		a.publisher = events.New(&events.Config{
			Enabled:       a.Cfg.Kafka.Enabled,
			Brokers:       a.Cfg.Kafka.Brokers,
			TopicSegments: a.Cfg.Kafka.TopicSegments,
			TopicFiles:    a.Cfg.Kafka.TopicFiles,
			Principal:     a.Cfg.Kafka.Principal,
		})
	}
	return a.publisher
}

// NewDriver builds the batch driver for the configured input folder.
func (a *Application) NewDriver(ctx context.Context) (*batch.Driver, error) {
	adapter, err := a.Adapter(ctx)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(pipeline.Config{
		WindowSizeS: a.Cfg.Window.SizeSeconds,
		StrideS:     a.Cfg.Window.StrideSeconds,
		Language:    a.Cfg.STT.Language,
		Model:       a.Cfg.STT.Model,
		Provider:    a.Cfg.STT.Provider,
	}, adapter, metrics.DefaultMetrics)
	if err != nil {
		return nil, err
	}

	return &batch.Driver{
		InputDir:   a.Cfg.Batch.InputDir,
		Extensions: a.Cfg.Batch.Extensions,
		Workers:    a.Cfg.Batch.Workers,
		Pipeline:   p,
		Publisher:  a.Publisher(),
		Metrics:    metrics.DefaultMetrics,
	}, nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	if a.adapter != nil {
		if err := a.adapter.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Error closing STT adapter")
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Error closing publisher")
		}
	}
	a.Logger.Info().Msg("IceScriber shutting down")
}
