// Package batch drives idempotent transcription runs over a folder of
// audio files.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/krissiernir/IceScriber/internal/audio"
	"github.com/krissiernir/IceScriber/internal/events"
	"github.com/krissiernir/IceScriber/internal/models"
	"github.com/krissiernir/IceScriber/internal/observability/logging"
	"github.com/krissiernir/IceScriber/internal/observability/metrics"
	"github.com/krissiernir/IceScriber/internal/pipeline"
	"github.com/krissiernir/IceScriber/internal/render"
)

// Artifact suffixes relative to the audio file path. The JSON is the
// canonical artifact; its presence marks a file as done.
const (
	suffixJSON       = ".json"
	suffixTranscript = "_TRANSCRIPT.txt"
	suffixMarkdown   = "_MARKDOWN.md"
	suffixLLM        = "_LLM.txt"
)

// Driver iterates over a folder of audio files, skipping files whose
// canonical artifact already exists, and runs the sliding-window
// pipeline on the rest. With Workers > 1 files are processed
// concurrently; the STT adapter behind the pipeline must then tolerate
// concurrent calls.
type Driver struct {
	InputDir   string
	Extensions []string
	Workers    int

	Pipeline  *pipeline.Pipeline
	Publisher *events.Publisher
	Metrics   *metrics.Metrics
}

// Summary reports the outcome of one batch run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Run processes every eligible audio file in the input folder. A
// failure in one file is recorded and the batch continues; the
// returned error aggregates all per-file failures and is nil only
// when every file in scope succeeded.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	logger := logging.WithComponent("batch")
	m := d.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}

	files, err := d.scan()
	if err != nil {
		return Summary{}, err
	}
	logger.Info().Int("files", len(files)).Str("dir", d.InputDir).Msg("Batch run started")

	var (
		summary Summary
		mu      sync.Mutex
		errs    *multierror.Error
		wg      sync.WaitGroup
	)

	workers := d.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan string)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				outcome, err := d.processFile(ctx, path, m)
				mu.Lock()
				switch {
				case err != nil:
					summary.Failed++
					errs = multierror.Append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
				case outcome == outcomeSkipped:
					summary.Skipped++
				default:
					summary.Processed++
				}
				mu.Unlock()
			}
		}()
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	logger.Info().
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Batch run finished")
	return summary, errs.ErrorOrNil()
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
)

// scan lists the eligible audio files, sorted so chapters are
// processed in order.
func (d *Driver) scan() ([]string, error) {
	entries, err := os.ReadDir(d.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}

	exts := d.Extensions
	if len(exts) == 0 {
		exts = []string{".wav"}
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		for _, ext := range exts {
			if strings.EqualFold(filepath.Ext(name), ext) {
				files = append(files, filepath.Join(d.InputDir, name))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (d *Driver) processFile(ctx context.Context, path string, m *metrics.Metrics) (outcome, error) {
	logger := logging.WithFile("batch", filepath.Base(path))
	jsonPath := path + suffixJSON

	// Idempotency: the canonical artifact marks the file as done.
	if _, err := os.Stat(jsonPath); err == nil {
		logger.Info().Msg("Skipping, already transcribed")
		m.FilesSkipped.Inc()
		return outcomeSkipped, nil
	}

	start := time.Now()

	stream, err := audio.LoadWAV(path)
	if err != nil {
		m.FilesFailed.Inc()
		return 0, fmt.Errorf("load audio: %w", err)
	}
	logger.Info().Float64("durationS", stream.DurationS()).Msg("Processing")

	transcript, err := d.Pipeline.Run(ctx, filepath.Base(path), stream.Samples, stream.SampleRate)
	if err != nil {
		m.FilesFailed.Inc()
		return 0, err
	}

	if err := d.persist(path, jsonPath, transcript); err != nil {
		m.FilesFailed.Inc()
		return 0, err
	}

	if d.Publisher != nil {
		if err := d.Publisher.PublishTranscript(ctx, transcript); err != nil {
			// The artifact is already durable; publishing is
			// best-effort and a failure must not fail the file.
			logger.Warn().Err(err).Msg("Failed to publish transcript events")
		}
	}

	m.FilesProcessed.Inc()
	m.FileDuration.Observe(time.Since(start).Seconds())
	logger.Info().
		Int("segments", len(transcript.Segments)).
		Dur("took", time.Since(start)).
		Msg("Done")
	return outcomeProcessed, nil
}

// persist writes the derived renderings first and the canonical JSON
// last, atomically. The skip check inspects only the JSON, so a crash
// mid-persist leaves the file eligible for retry with no partial
// canonical artifact on disk.
func (d *Driver) persist(audioPath, jsonPath string, t *models.Transcript) error {
	derived := map[string]string{
		audioPath + suffixTranscript: render.Timestamped(t),
		audioPath + suffixMarkdown:   render.Markdown(t),
		audioPath + suffixLLM:        render.LLMText(t),
	}
	for path, content := range derived {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write rendering %s: %w", filepath.Base(path), err)
		}
	}

	data, err := t.MarshalJSONArtifact()
	if err != nil {
		return fmt.Errorf("marshal canonical transcript: %w", err)
	}
	tmp := jsonPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write canonical transcript: %w", err)
	}
	if err := os.Rename(tmp, jsonPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize canonical transcript: %w", err)
	}
	return nil
}
