// Command download-events extracts the event ids referenced by the
// downloaded market batches and fetches each event's details in
// parallel, one JSON file per event. Already-downloaded events are
// skipped, so rerunning the command retries exactly the failures of
// the previous run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/amirharati/polymarket-data/internal/fetch"
	"github.com/amirharati/polymarket-data/internal/gamma"
	"github.com/amirharati/polymarket-data/internal/logging"
	"github.com/amirharati/polymarket-data/internal/scan"
	"github.com/amirharati/polymarket-data/internal/store"
	"github.com/amirharati/polymarket-data/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	marketDataDir := flag.String("market-data-dir", "", "directory with market batch files (required)")
	outputDir := flag.String("output-dir", "", "directory for event detail files (required)")
	workers := flag.Int("workers", fetch.DefaultWorkers, "parallel download workers")
	baseURL := flag.String("base-url", gamma.DefaultBaseURL, "Gamma API base URL")
	logFile := flag.String("log-file", "event_downloader.log", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *marketDataDir == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "error: -market-data-dir and -output-dir are required")
		flag.Usage()
		return 1
	}

	logger, closeLog, err := logging.Setup(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer closeLog()
	logger = logger.With("run_id", uuid.NewString())

	logger.Info("starting event downloader",
		"version", version.Version,
		"market_data_dir", *marketDataDir,
		"output_dir", *outputDir,
		"workers", *workers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ids, malformed, err := scan.EventIDs(*marketDataDir, logger)
	if err != nil {
		logger.Error("could not extract event ids", "error", err)
		return 1
	}
	if malformed > 0 {
		logger.Warn("malformed market lines or event stubs skipped", "count", malformed)
	}

	st, err := store.New(*outputDir, logger)
	if err != nil {
		logger.Error("could not open output store", "error", err)
		return 1
	}

	pending, done := scan.Pending(ids, st, store.EventFileName)
	logger.Info("event resume state", "total", len(ids), "already_downloaded", done, "pending", len(pending))
	if len(pending) == 0 {
		logger.Info("nothing to download")
		return 0
	}

	client := gamma.NewClient(*baseURL, gamma.WithLogger(logger))
	items := make([]fetch.Item, len(pending))
	for i, id := range pending {
		items[i] = fetch.Item{ID: id, Key: store.EventFileName(id)}
	}

	pool := fetch.NewPool(*workers, logger)
	summary := pool.Run(ctx, items, func(ctx context.Context, item fetch.Item) fetch.Outcome {
		body, _, err := client.GetEvent(ctx, item.ID)
		if err != nil {
			return fetch.Outcome{ID: item.ID, Status: fetch.StatusFetchError, Err: err}
		}
		if err := st.Put(item.Key, body); err != nil {
			return fetch.Outcome{ID: item.ID, Status: fetch.StatusSaveError, Err: err}
		}
		return fetch.Outcome{ID: item.ID, Status: fetch.StatusSuccess}
	})

	logger.Info("event download finished",
		"total", summary.Total,
		"success", summary.Success,
		"fetch_errors", summary.FetchErrors(),
		"save_errors", summary.SaveErrors(),
	)
	if summary.FetchErrors() > 0 {
		logger.Warn("event ids with fetch errors (rerun to retry)", "ids", summary.FetchErrorIDs)
	}
	if summary.SaveErrors() > 0 {
		logger.Warn("event ids with save errors (rerun to retry)", "ids", summary.SaveErrorIDs)
	}
	return 0
}
