package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/krissiernir/IceScriber/internal/render"
	"github.com/krissiernir/IceScriber/internal/store"
)

const excerptRunes = 160

func newQueryCmd() *cobra.Command {
	var (
		bookID    string
		limit     int
		listBooks bool
		infoBook  string
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "query [keyword]",
		Short: "Search the transcript index",
		Long: `Keyword search over all indexed segments, cited as
  filename [HH:MM:SS]–[HH:MM:SS]: excerpt
Also lists books (--list-books) and per-book statistics (--info).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Store.Path
			}

			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch {
			case listBooks:
				books, err := s.ListBooks(ctx)
				if err != nil {
					return err
				}
				for _, b := range books {
					author := b.Author
					if author == "" {
						author = "(unknown author)"
					}
					fmt.Fprintf(out, "%s  %s — %s\n", b.ID, b.Title, author)
				}
				return nil

			case infoBook != "":
				info, err := s.BookInfo(ctx, infoBook)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n", info.Title)
				fmt.Fprintf(out, "  audio files: %d\n", info.AudioFileCount)
				fmt.Fprintf(out, "  segments:    %d\n", info.SegmentCount)
				if info.TotalDurationS > 0 {
					fmt.Fprintf(out, "  duration:    %.1f hours\n", info.TotalDurationS/3600)
				}
				return nil

			case len(args) == 1:
				results, err := s.Search(ctx, args[0], bookID, limit)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintf(out, "no results for %q\n", args[0])
					return nil
				}
				for i, r := range results {
					fmt.Fprintf(out, "%d. %s\n", i+1, citation(r))
				}
				return nil

			default:
				return cmd.Usage()
			}
		},
	}

	cmd.Flags().StringVar(&bookID, "book-id", "", "Restrict search to one book")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of results")
	cmd.Flags().BoolVar(&listBooks, "list-books", false, "List all books")
	cmd.Flags().StringVar(&infoBook, "info", "", "Show statistics for a book id")
	cmd.Flags().StringVar(&dbPath, "db", "", "Index database path (default from config)")
	return cmd
}

// citation formats one search hit as "file [HH:MM:SS–HH:MM:SS]: excerpt".
func citation(r store.SearchResult) string {
	text := []rune(r.Text)
	if len(text) > excerptRunes {
		text = append(text[:excerptRunes], '…')
	}
	return fmt.Sprintf("%s [%s–%s]: %s",
		filepath.Base(r.FilePath),
		render.FormatTimestamp(r.StartS),
		render.FormatTimestamp(r.EndS),
		string(text))
}
