// Package store maintains the relational transcript index: books,
// their audio files, and the per-segment (start, end, text) triples
// used for keyword search across a library of transcripts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/krissiernir/IceScriber/internal/models"
	"github.com/krissiernir/IceScriber/internal/observability/metrics"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	book_id    TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT,
	metadata   TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS audio_files (
	audio_file_id TEXT PRIMARY KEY,
	book_id       TEXT NOT NULL REFERENCES books(book_id),
	file_number   INTEGER,
	file_path     TEXT NOT NULL,
	json_path     TEXT NOT NULL,
	duration_s    REAL,
	created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS segments (
	segment_id    TEXT PRIMARY KEY,
	audio_file_id TEXT NOT NULL REFERENCES audio_files(audio_file_id),
	start_s       REAL NOT NULL,
	end_s         REAL NOT NULL,
	text          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audio_files_book ON audio_files(book_id);
CREATE INDEX IF NOT EXISTS idx_segments_file ON segments(audio_file_id);
CREATE INDEX IF NOT EXISTS idx_segments_time ON segments(audio_file_id, start_s);
`

// Store wraps the SQLite transcript index.
type Store struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

// Open opens (creating if necessary) the index at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init index schema: %w", err)
	}
	return &Store{db: db, metrics: metrics.DefaultMetrics}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Book is one audiobook in the index.
type Book struct {
	ID     string
	Title  string
	Author string
}

// BookInfo carries aggregate statistics for one book.
type BookInfo struct {
	Book
	AudioFileCount int
	SegmentCount   int
	TotalDurationS float64
}

// AddBook inserts a book and returns its id.
func (s *Store) AddBook(ctx context.Context, title, author string, metadata map[string]any) (string, error) {
	id := uuid.NewString()
	var meta any
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return "", fmt.Errorf("marshal book metadata: %w", err)
		}
		meta = string(raw)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (book_id, title, author, metadata) VALUES (?, ?, ?, ?)`,
		id, title, nullable(author), meta)
	if err != nil {
		return "", fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

// IngestTranscript loads one canonical transcript into a book. Empty
// segments are skipped. Returns the audio file id and the number of
// segments indexed.
func (s *Store) IngestTranscript(ctx context.Context, bookID, jsonPath string, t *models.Transcript) (string, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	fileID := uuid.NewString()
	audioPath := strings.TrimSuffix(jsonPath, ".json")
	_, err = tx.ExecContext(ctx,
		`INSERT INTO audio_files (audio_file_id, book_id, file_number, file_path, json_path, duration_s)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fileID, bookID, fileNumber(t.Metadata.AudioFile), audioPath, jsonPath, nullableFloat(t.Metadata.DurationS))
	if err != nil {
		return "", 0, fmt.Errorf("insert audio file: %w", err)
	}

	count := 0
	for _, seg := range t.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO segments (segment_id, audio_file_id, start_s, end_s, text) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), fileID, seg.Start, seg.End, seg.Text)
		if err != nil {
			return "", 0, fmt.Errorf("insert segment: %w", err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return "", 0, err
	}
	s.metrics.FilesIngested.Inc()
	s.metrics.SegmentsIngested.Add(float64(count))
	return fileID, count, nil
}

// SearchResult is one keyword hit with enough context for a citation.
type SearchResult struct {
	SegmentID string
	FilePath  string
	StartS    float64
	EndS      float64
	Text      string
}

// Search performs a case-insensitive substring search over segment
// text, optionally scoped to one book, newest-position-first within a
// file. limit <= 0 means the default of 50 results.
func (s *Store) Search(ctx context.Context, query, bookID string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `SELECT seg.segment_id, af.file_path, seg.start_s, seg.end_s, seg.text
	      FROM segments seg
	      JOIN audio_files af ON af.audio_file_id = seg.audio_file_id
	      WHERE instr(lower(seg.text), lower(?)) > 0`
	args := []any{query}
	if bookID != "" {
		q += ` AND af.book_id = ?`
		args = append(args, bookID)
	}
	q += ` ORDER BY af.file_number, af.file_path, seg.start_s LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.SegmentID, &r.FilePath, &r.StartS, &r.EndS, &r.Text); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListBooks returns all books in the index.
func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book_id, title, COALESCE(author, '') FROM books ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// BookInfo returns aggregate statistics for one book.
func (s *Store) BookInfo(ctx context.Context, bookID string) (*BookInfo, error) {
	var info BookInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT b.book_id, b.title, COALESCE(b.author, ''),
		       (SELECT COUNT(*) FROM audio_files af WHERE af.book_id = b.book_id),
		       (SELECT COUNT(*) FROM segments seg
		        JOIN audio_files af ON af.audio_file_id = seg.audio_file_id
		        WHERE af.book_id = b.book_id),
		       (SELECT COALESCE(SUM(af.duration_s), 0) FROM audio_files af WHERE af.book_id = b.book_id)
		FROM books b
		WHERE b.book_id = ?`, bookID).
		Scan(&info.ID, &info.Title, &info.Author, &info.AudioFileCount, &info.SegmentCount, &info.TotalDurationS)
	if err != nil {
		return nil, fmt.Errorf("book %s: %w", bookID, err)
	}
	return &info, nil
}

// fileNumber extracts a leading track number from names like
// "001_Daudi_trudsins.wav".
func fileNumber(filename string) any {
	base := filepath.Base(filename)
	head, _, found := strings.Cut(base, "_")
	if !found {
		return nil
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return nil
	}
	return n
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
