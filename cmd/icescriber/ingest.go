package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/krissiernir/IceScriber/internal/models"
	"github.com/krissiernir/IceScriber/internal/store"
)

func newIngestCmd() *cobra.Command {
	var (
		dir       string
		bookTitle string
		author    string
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load canonical transcripts into the search index",
		Long: `Ingests every canonical .json transcript in a folder as the audio
files of one book. Segments become searchable (start, end, text)
rows; the JSON files remain the source of truth and can be
re-ingested at any time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Store.Path
			}
			if bookTitle == "" {
				return fmt.Errorf("--book-title is required")
			}

			matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				return fmt.Errorf("no .json transcripts found in %s", dir)
			}
			sort.Strings(matches)

			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			bookID, err := s.AddBook(ctx, bookTitle, author, map[string]any{
				"source":           dir,
				"audio_file_count": len(matches),
			})
			if err != nil {
				return err
			}

			var errs *multierror.Error
			ingested := 0
			totalSegments := 0
			for _, jsonPath := range matches {
				data, err := os.ReadFile(jsonPath)
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				t, err := models.ParseJSONArtifact(data)
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				_, n, err := s.IngestTranscript(ctx, bookID, jsonPath, t)
				if err != nil {
					errs = multierror.Append(errs, fmt.Errorf("%s: %w", filepath.Base(jsonPath), err))
					continue
				}
				ingested++
				totalSegments += n
				fmt.Fprintf(cmd.OutOrStdout(), "ingested %s: %d segments\n", filepath.Base(jsonPath), n)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "book %q (%s): %d files, %d segments\n",
				bookTitle, bookID, ingested, totalSegments)
			return errs.ErrorOrNil()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "audio_chapters", "Folder of canonical .json transcripts")
	cmd.Flags().StringVar(&bookTitle, "book-title", "", "Title for the book (required)")
	cmd.Flags().StringVar(&author, "author", "", "Author name")
	cmd.Flags().StringVar(&dbPath, "db", "", "Index database path (default from config)")
	return cmd
}
