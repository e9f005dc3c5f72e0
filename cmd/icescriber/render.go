package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krissiernir/IceScriber/internal/models"
	"github.com/krissiernir/IceScriber/internal/render"
)

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <transcript.json> [...]",
		Short: "Regenerate the derived text renderings from canonical transcripts",
		Long: `Rebuilds the timestamped, markdown and LLM text files next to each
canonical .json transcript. The renderings are pure functions of the
transcript, so regenerating them is always safe.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, jsonPath := range args {
				data, err := os.ReadFile(jsonPath)
				if err != nil {
					return err
				}
				t, err := models.ParseJSONArtifact(data)
				if err != nil {
					return fmt.Errorf("%s: %w", jsonPath, err)
				}

				base := strings.TrimSuffix(jsonPath, ".json")
				outputs := map[string]string{
					base + "_TRANSCRIPT.txt": render.Timestamped(t),
					base + "_MARKDOWN.md":    render.Markdown(t),
					base + "_LLM.txt":        render.LLMText(t),
				}
				for path, content := range outputs {
					if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rendered %s (%d segments)\n", jsonPath, len(t.Segments))
			}
			return nil
		},
	}
}
