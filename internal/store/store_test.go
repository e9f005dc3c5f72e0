package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/krissiernir/IceScriber/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "transcripts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func chapterTranscript(name string, texts ...string) *models.Transcript {
	t := &models.Transcript{
		Metadata: models.Metadata{
			AudioFile: name,
			Language:  "is-IS",
			DurationS: float64(30 * len(texts)),
		},
	}
	for i, text := range texts {
		t.Segments = append(t.Segments, models.Segment{
			Start: float64(30 * i),
			End:   float64(30 * (i + 1)),
			Text:  text,
		})
	}
	return t
}

func TestIngestAndSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bookID, err := s.AddBook(ctx, "Dauði trúðsins", "Árni Þórarinsson", nil)
	if err != nil {
		t.Fatal(err)
	}

	tr := chapterTranscript("001_kafli.wav",
		"Morguninn eftir fann lögreglan bátinn.",
		"Enginn vissi hvar trúðurinn hafði verið.",
	)
	_, n, err := s.IngestTranscript(ctx, bookID, "/data/001_kafli.wav.json", tr)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 segments ingested, got %d", n)
	}

	results, err := s.Search(ctx, "trúðurinn", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.StartS != 30 || r.EndS != 60 {
		t.Errorf("unexpected result times: [%f, %f]", r.StartS, r.EndS)
	}
	if !strings.Contains(r.Text, "trúðurinn") {
		t.Errorf("result text missing keyword: %q", r.Text)
	}
	if filepath.Base(r.FilePath) != "001_kafli.wav" {
		t.Errorf("unexpected file path: %q", r.FilePath)
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bookID, err := s.AddBook(ctx, "Test", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	tr := chapterTranscript("a.wav", "The Harbor was empty that night.")
	if _, _, err := s.IngestTranscript(ctx, bookID, "a.wav.json", tr); err != nil {
		t.Fatal(err)
	}

	for _, q := range []string{"harbor", "HARBOR", "Harbor"} {
		results, err := s.Search(ctx, q, "", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 {
			t.Errorf("query %q: expected 1 result, got %d", q, len(results))
		}
	}
}

func TestSearch_ScopedToBook(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bookA, _ := s.AddBook(ctx, "Book A", "", nil)
	bookB, _ := s.AddBook(ctx, "Book B", "", nil)

	if _, _, err := s.IngestTranscript(ctx, bookA, "a.json",
		chapterTranscript("a.wav", "the lighthouse keeper waited alone")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.IngestTranscript(ctx, bookB, "b.json",
		chapterTranscript("b.wav", "the lighthouse was dark that winter")); err != nil {
		t.Fatal(err)
	}

	all, err := s.Search(ctx, "lighthouse", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 unscoped results, got %d", len(all))
	}

	scoped, err := s.Search(ctx, "lighthouse", bookA, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(scoped) != 1 {
		t.Fatalf("expected 1 scoped result, got %d", len(scoped))
	}
	if filepath.Base(scoped[0].FilePath) != "a" && !strings.HasSuffix(scoped[0].FilePath, "a") {
		t.Errorf("scoped result from wrong book: %q", scoped[0].FilePath)
	}
}

func TestIngest_SkipsEmptySegments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bookID, _ := s.AddBook(ctx, "Test", "", nil)
	tr := chapterTranscript("a.wav", "real content", "   ", "more content")
	_, n, err := s.IngestTranscript(ctx, bookID, "a.wav.json", tr)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 segments (blank skipped), got %d", n)
	}
}

func TestListBooksAndInfo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bookID, err := s.AddBook(ctx, "Saga", "Höfundur", map[string]any{"source": "dir"})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.IngestTranscript(ctx, bookID, "001_a.wav.json",
		chapterTranscript("001_a.wav", "fyrsti", "annar")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.IngestTranscript(ctx, bookID, "002_b.wav.json",
		chapterTranscript("002_b.wav", "þriðji")); err != nil {
		t.Fatal(err)
	}

	books, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].Title != "Saga" || books[0].Author != "Höfundur" {
		t.Errorf("unexpected books: %+v", books)
	}

	info, err := s.BookInfo(ctx, bookID)
	if err != nil {
		t.Fatal(err)
	}
	if info.AudioFileCount != 2 {
		t.Errorf("expected 2 audio files, got %d", info.AudioFileCount)
	}
	if info.SegmentCount != 3 {
		t.Errorf("expected 3 segments, got %d", info.SegmentCount)
	}
	if info.TotalDurationS != 90 {
		t.Errorf("expected 90s total duration, got %f", info.TotalDurationS)
	}
}

func TestFileNumber(t *testing.T) {
	tests := []struct {
		filename string
		want     any
	}{
		{"001_Dauði_trúðsins.wav", 1},
		{"12_kafli.wav", 12},
		{"chapter_one.wav", nil},
		{"nounderscore.wav", nil},
	}
	for _, tt := range tests {
		if got := fileNumber(tt.filename); got != tt.want {
			t.Errorf("fileNumber(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
