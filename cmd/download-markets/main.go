// Command download-markets pages through the Gamma /markets endpoint
// and persists each page as a JSONL batch file. Runs are resumable:
// the offset watermark is recovered from the batch files already on
// disk, and holes left by interrupted runs are re-fetched first.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	outputDir := flag.String("output-dir", "", "directory for batch files (required)")
	status := flag.String("status", gamma.StatusClosed, "market status to fetch: closed, open, or all")
	limit := flag.Int("limit", 20, "markets per batch file")
	throttle := flag.Duration("sleep-time", time.Second, "delay between API requests")
	baseURL := flag.String("base-url", gamma.DefaultBaseURL, "Gamma API base URL")
	startDateMin := flag.String("start-date-min", "", "filter by minimum start date (YYYY-MM-DD)")
	startDateMax := flag.String("start-date-max", "", "filter by maximum start date (YYYY-MM-DD)")
	endDateMin := flag.String("end-date-min", "", "filter by minimum end date (YYYY-MM-DD)")
	endDateMax := flag.String("end-date-max", "", "filter by maximum end date (YYYY-MM-DD)")
	logFile := flag.String("log-file", "market_downloader.log", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *outputDir == "" {
		fmt.Fprintln(os.Stderr, "error: -output-dir is required")
		flag.Usage()
		return 1
	}
	if *limit < 1 {
		fmt.Fprintln(os.Stderr, "error: -limit must be >= 1")
		return 1
	}

	logger, closeLog, err := logging.Setup(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer closeLog()
	logger = logger.With("run_id", uuid.NewString())

	logger.Info("starting market downloader",
		"version", version.Version,
		"output_dir", *outputDir,
		"status", *status,
		"limit", *limit,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(*outputDir, logger)
	if err != nil {
		logger.Error("could not open output store", "error", err)
		return 1
	}

	watermark, err := scan.OffsetWatermark(*outputDir, *limit)
	if err != nil {
		logger.Error("could not compute resume watermark", "error", err)
		return 1
	}
	logger.Info("resume state",
		"next_offset", watermark.NextOffset,
		"holes", len(watermark.Holes),
	)

	client := gamma.NewClient(*baseURL, gamma.WithLogger(logger))
	fetchPage := func(ctx context.Context, offset int) ([]json.RawMessage, error) {
		return client.ListMarkets(ctx, gamma.ListMarketsOptions{
			Limit:        *limit,
			Offset:       offset,
			Status:       *status,
			StartDateMin: *startDateMin,
			StartDateMax: *startDateMax,
			EndDateMin:   *endDateMin,
			EndDateMax:   *endDateMax,
		})
	}

	runner := fetch.NewBatchRunner(fetch.BatchConfig{
		Limit:    *limit,
		Throttle: *throttle,
	}, st, fetchPage, logger)

	result := runner.Run(ctx, watermark)
	logger.Info("market download finished",
		"state", string(result.State),
		"pages_saved", result.PagesSaved,
		"last_offset", result.LastOffset,
	)

	if result.State != fetch.StateDone {
		if result.Err != nil {
			logger.Error("run halted", "state", string(result.State), "error", result.Err)
		}
		return 1
	}
	return 0
}
