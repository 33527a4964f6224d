package fetch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/amirharati/polymarket-data/internal/scan"
	"github.com/amirharati/polymarket-data/internal/store"
)

// PageFetcher fetches one page of raw records at the given offset.
type PageFetcher func(ctx context.Context, offset int) ([]json.RawMessage, error)

// TerminalState is how a batch run ended.
type TerminalState string

const (
	// StateDone means the source returned an empty page: end of data.
	StateDone TerminalState = "done"
	// StateFetchFailed means a page fetch failed and the loop halted.
	StateFetchFailed TerminalState = "fetch_failed"
	// StateSaveFailed means persisting a page failed and the loop halted.
	StateSaveFailed TerminalState = "save_failed"
	// StateCanceled means the context was canceled mid-run.
	StateCanceled TerminalState = "canceled"
)

// BatchResult summarizes a paginated run.
type BatchResult struct {
	State      TerminalState
	PagesSaved int
	LastOffset int
	Err        error
}

// BatchConfig holds the paginated downloader's settings.
type BatchConfig struct {
	Limit    int           // records per page and per file
	Throttle time.Duration // fixed inter-request delay
}

// BatchRunner walks the offset cursor, persisting each page as a JSONL
// batch file. It never retries within a run: any failure halts the
// loop and the next run resumes from the watermark.
type BatchRunner struct {
	cfg    BatchConfig
	store  *store.Store
	fetch  PageFetcher
	logger *slog.Logger
}

// NewBatchRunner creates a BatchRunner.
func NewBatchRunner(cfg BatchConfig, s *store.Store, fetch PageFetcher, logger *slog.Logger) *BatchRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchRunner{cfg: cfg, store: s, fetch: fetch, logger: logger}
}

// Run resumes from the given watermark. Holes below the watermark
// (missing or zero-length batch files from an interrupted earlier run)
// are re-fetched first, then the cursor advances from NextOffset until
// the source is exhausted or something fails.
func (b *BatchRunner) Run(ctx context.Context, w scan.Watermark) BatchResult {
	result := BatchResult{State: StateDone}

	for _, offset := range w.Holes {
		b.logger.Info("re-fetching incomplete batch", "offset", offset)
		state := b.fetchPage(ctx, offset, &result)
		if state == pageFailed {
			return result
		}
		// An empty page at a hole just means the source has fewer
		// records there now; keep going.
	}

	offset := w.NextOffset
	for {
		state := b.fetchPage(ctx, offset, &result)
		if state == pageFailed {
			return result
		}
		if state == pageEmpty {
			b.logger.Info("received empty batch, pagination complete", "offset", offset)
			result.State = StateDone
			return result
		}
		offset += b.cfg.Limit
	}
}

type pageState int

const (
	pageSaved pageState = iota
	pageEmpty
	pageFailed
)

// fetchPage fetches and persists one page, then applies the throttle.
// On failure it fills in the result's terminal state.
func (b *BatchRunner) fetchPage(ctx context.Context, offset int, result *BatchResult) pageState {
	if err := ctx.Err(); err != nil {
		result.State = StateCanceled
		result.Err = err
		return pageFailed
	}

	result.LastOffset = offset

	b.logger.Info("fetching batch", "offset", offset, "limit", b.cfg.Limit)
	page, err := b.fetch(ctx, offset)
	if err != nil {
		b.logger.Error("failed to fetch batch, stopping", "offset", offset, "err", err)
		result.State = StateFetchFailed
		result.Err = err
		return pageFailed
	}
	if len(page) == 0 {
		return pageEmpty
	}

	if err := b.store.Put(store.BatchFileName(offset, b.cfg.Limit), encodeJSONL(page)); err != nil {
		b.logger.Error("failed to save batch, stopping to prevent inconsistent state",
			"offset", offset, "err", err)
		result.State = StateSaveFailed
		result.Err = err
		return pageFailed
	}

	result.PagesSaved++
	b.logger.Info("saved batch", "offset", offset, "records", len(page))

	b.sleep(ctx)
	return pageSaved
}

func (b *BatchRunner) sleep(ctx context.Context) {
	if b.cfg.Throttle <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(b.cfg.Throttle):
	}
}

// encodeJSONL renders one record per line.
func encodeJSONL(records []json.RawMessage) []byte {
	var size int
	for _, r := range records {
		size += len(r) + 1
	}
	out := make([]byte, 0, size)
	for _, r := range records {
		out = append(out, r...)
		out = append(out, '\n')
	}
	return out
}
