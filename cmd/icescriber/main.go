// Command icescriber transcribes folders of long-form audio with a
// sliding-window speech-to-text pipeline and maintains the derived
// renderings and search index.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/krissiernir/IceScriber/internal/config"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if flagConfig != "" {
		c, err := config.LoadFile(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Load()
	}
	if flagLogLevel != "" {
		cfg.Observability.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Observability.LogFormat = flagLogFormat
	}
	return cfg, nil
}

func main() {
	root := &cobra.Command{
		Use:           "icescriber",
		Short:         "Sliding-window audiobook transcription and indexing",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (overlays environment)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: json|console")

	root.AddCommand(
		newTranscribeCmd(),
		newRenderCmd(),
		newIngestCmd(),
		newQueryCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
