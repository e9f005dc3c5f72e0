// Package config loads service configuration from the environment,
// optionally overlaid by a YAML file. Invalid values fall back to
// defaults rather than failing startup; semantic validation of the
// pipeline parameters happens at pipeline construction.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Defaults mirror the original IceScriber batch settings: 30-second
// windows advanced by 5 seconds, 25 seconds of shared context.
const (
	DefaultWindowSizeS = 30.0
	DefaultStrideS     = 5.0
	DefaultModelID     = "language-and-voice-lab/whisper-large-icelandic-62640-steps-967h"
)

// ServiceConfig identifies this instance.
type ServiceConfig struct {
	Principal string `yaml:"principal"`
}

// WindowConfig holds the sliding-window parameters.
type WindowConfig struct {
	SizeSeconds   float64 `yaml:"size_seconds"`
	StrideSeconds float64 `yaml:"stride_seconds"`
}

// STTConfig selects and parameterizes the transcription provider.
type STTConfig struct {
	Provider string `yaml:"provider"` // mock, google
	Language string `yaml:"language"`
	Model    string `yaml:"model"`
}

// BatchConfig drives the folder batch runs.
type BatchConfig struct {
	InputDir   string   `yaml:"input_dir"`
	Workers    int      `yaml:"workers"`
	Extensions []string `yaml:"extensions"`
}

// KafkaConfig configures segment event publishing.
type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	TopicSegments string   `yaml:"topic_segments"`
	TopicFiles    string   `yaml:"topic_files"`
	Principal     string   `yaml:"principal"`
}

// StoreConfig locates the SQLite transcript index.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ObservabilityConfig controls logging and the metrics endpoint.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // json, console
	MetricsAddr string `yaml:"metrics_addr"`
}

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Window        WindowConfig        `yaml:"window"`
	STT           STTConfig           `yaml:"stt"`
	Batch         BatchConfig         `yaml:"batch"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// Load builds the configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Service: ServiceConfig{
			Principal: envOrDefault("SERVICE_PRINCIPAL", "icescriber"),
		},
		Window: WindowConfig{
			SizeSeconds:   envOrDefaultFloat("WINDOW_SIZE_SECONDS", DefaultWindowSizeS),
			StrideSeconds: envOrDefaultFloat("WINDOW_STRIDE_SECONDS", DefaultStrideS),
		},
		STT: STTConfig{
			Provider: envOrDefault("STT_PROVIDER", "mock"),
			Language: envOrDefault("STT_LANGUAGE", "is-IS"),
			Model:    envOrDefault("STT_MODEL", DefaultModelID),
		},
		Batch: BatchConfig{
			InputDir:   envOrDefault("BATCH_INPUT_DIR", "audio_chapters"),
			Workers:    envOrDefaultInt("BATCH_WORKERS", 1),
			Extensions: envOrDefaultList("BATCH_EXTENSIONS", []string{".wav"}),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envOrDefaultList("KAFKA_BROKERS", nil),
			TopicSegments: envOrDefault("KAFKA_TOPIC_SEGMENTS", "transcript.segments"),
			TopicFiles:    envOrDefault("KAFKA_TOPIC_FILES", "transcript.files"),
			Principal:     envOrDefault("KAFKA_PRINCIPAL", ""),
		},
		Store: StoreConfig{
			Path: envOrDefault("STORE_PATH", "transcripts.db"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "console"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ""),
		},
	}

	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Principal
	}
	return cfg
}

// LoadFile overlays a YAML configuration file on top of the
// environment-derived configuration.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Principal
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		var out []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
