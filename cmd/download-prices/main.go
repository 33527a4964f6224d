// Command download-prices fetches the full price history of each
// market's first CLOB token (the YES outcome) from the /prices-history
// endpoint, one JSON file per market. Markets with a non-empty history
// file are skipped on rerun.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/amirharati/polymarket-data/internal/clob"
	"github.com/amirharati/polymarket-data/internal/fetch"
	"github.com/amirharati/polymarket-data/internal/logging"
	"github.com/amirharati/polymarket-data/internal/scan"
	"github.com/amirharati/polymarket-data/internal/store"
	"github.com/amirharati/polymarket-data/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	marketDetailsDir := flag.String("market-details-dir", "", "directory with per-market JSON files (required)")
	outputDir := flag.String("output-dir", "", "directory for price history files (required)")
	workers := flag.Int("workers", fetch.DefaultWorkers, "parallel download workers")
	baseURL := flag.String("base-url", clob.DefaultBaseURL, "CLOB API base URL")
	logFile := flag.String("log-file", "price_history_downloader.log", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *marketDetailsDir == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "error: -market-details-dir and -output-dir are required")
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

	logger.Info("starting price history downloader",
		"version", version.Version,
		"market_details_dir", *marketDetailsDir,
		"output_dir", *outputDir,
		"workers", *workers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pairs, skipped, err := scan.TokenPairs(*marketDetailsDir, logger)
	if err != nil {
		logger.Error("could not extract market/token pairs", "error", err)
		return 1
	}
	if skipped > 0 {
		logger.Warn("markets without usable tokens skipped", "count", skipped)
	}

	st, err := store.New(*outputDir, logger)
	if err != nil {
		logger.Error("could not open output store", "error", err)
		return 1
	}

	pending, done := scan.PendingPairs(pairs, st)
	logger.Info("price history resume state", "total", len(pairs), "already_downloaded", done, "pending", len(pending))
	if len(pending) == 0 {
		logger.Info("nothing to download")
		return 0
	}

	client := clob.NewClient(*baseURL, clob.WithLogger(logger))
	items := make([]fetch.Item, len(pending))
	for i, p := range pending {
		items[i] = fetch.Item{ID: p.MarketID, Key: p.TokenID}
	}

	pool := fetch.NewPool(*workers, logger)
	summary := pool.Run(ctx, items, func(ctx context.Context, item fetch.Item) fetch.Outcome {
		body, numPoints, err := client.GetPriceHistory(ctx, item.Key, clob.HistoryStartTs, clob.HistoryEndTs)
		if err != nil {
			return fetch.Outcome{ID: item.ID, Status: fetch.StatusFetchError, Err: err}
		}
		if err := st.Put(store.PriceHistoryFileName(item.ID), body); err != nil {
			return fetch.Outcome{ID: item.ID, Status: fetch.StatusSaveError, Err: err}
		}
		logger.Debug("saved price history", "market_id", item.ID, "points", numPoints)
		return fetch.Outcome{ID: item.ID, Status: fetch.StatusSuccess}
	})

	logger.Info("price history download finished",
		"total", summary.Total,
		"success", summary.Success,
		"fetch_errors", summary.FetchErrors(),
		"save_errors", summary.SaveErrors(),
	)
	if summary.FetchErrors() > 0 {
		logger.Warn("market ids with fetch errors (rerun to retry)", "ids", summary.FetchErrorIDs)
	}
	if summary.SaveErrors() > 0 {
		logger.Warn("market ids with save errors (rerun to retry)", "ids", summary.SaveErrorIDs)
	}
	return 0
}
