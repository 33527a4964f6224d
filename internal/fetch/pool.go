package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 8

// DoFunc executes one unit of work. Implementations return an Outcome
// rather than an error so the status taxonomy stays explicit.
type DoFunc func(ctx context.Context, item Item) Outcome

// Pool runs fetch+save units of work across a fixed set of workers.
// One item's failure never aborts its siblings: a panic inside DoFunc
// is recovered and recorded as a fetch error for that item.
type Pool struct {
	workers int
	logger  *slog.Logger
}

// NewPool creates a Pool with the given worker count.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{workers: workers, logger: logger}
}

// Run dispatches every item to the workers and blocks until all
// outcomes are collected. The summary reflects every submitted item;
// outcome order is irrelevant to the final counts.
func (p *Pool) Run(ctx context.Context, items []Item, do DoFunc) Summary {
	total := len(items)

	itemCh := make(chan Item)
	outcomeCh := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				outcomeCh <- p.runOne(ctx, item, do)
			}
		}()
	}

	go func() {
		defer close(itemCh)
		for _, item := range items {
			select {
			case itemCh <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomeCh)
	}()

	// Single collector: the only cross-worker shared state is this
	// reduction.
	var summary Summary
	completed := 0
	for outcome := range outcomeCh {
		completed++
		summary.add(outcome)

		if outcome.Status == StatusSuccess {
			p.logger.Info("completed item",
				"progress", fmt.Sprintf("%d/%d", completed, total),
				"status", outcome.Status.String(),
				"id", outcome.ID,
			)
		} else {
			p.logger.Warn("completed item",
				"progress", fmt.Sprintf("%d/%d", completed, total),
				"status", outcome.Status.String(),
				"id", outcome.ID,
				"err", outcome.Err,
			)
		}
	}

	summary.sortIDs()
	return summary
}

// runOne executes a single unit of work, converting panics into fetch
// errors so the pool keeps draining.
func (p *Pool) runOne(ctx context.Context, item Item, do DoFunc) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker panic", "id", item.ID, "panic", r)
			outcome = Outcome{
				ID:     item.ID,
				Status: StatusFetchError,
				Err:    fmt.Errorf("panic in worker: %v", r),
			}
		}
	}()

	return do(ctx, item)
}
