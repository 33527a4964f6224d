// Command analyze-prices computes descriptive statistics over every
// downloaded price history and writes two artifacts to the output
// directory: a human-readable summary and a machine-readable JSON
// array of per-series results. Both are regenerated wholesale on
// every run.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/amirharati/polymarket-data/internal/analyze"
	"github.com/amirharati/polymarket-data/internal/logging"
	"github.com/amirharati/polymarket-data/internal/store"
	"github.com/amirharati/polymarket-data/internal/version"
)

const (
	summaryFileName = "analysis_summary.txt"
	resultsFileName = "analysis_results.json"
)

func main() {
	os.Exit(run())
}

func run() int {
	inputDir := flag.String("input-dir", "", "directory with price history files (required)")
	outputDir := flag.String("output-dir", ".", "directory for the summary and results artifacts")
	workers := flag.Int("workers", analyze.DefaultAnalysisWorkers, "parallel analysis workers")
	logFile := flag.String("log-file", "analyze_prices.log", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *inputDir == "" {
		fmt.Fprintln(os.Stderr, "error: -input-dir is required")
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

	logger.Info("starting price analysis",
		"version", version.Version,
		"input_dir", *inputDir,
		"workers", *workers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	results, err := analyze.AnalyzeDir(ctx, *inputDir, *workers, logger)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		return 1
	}
	globals := analyze.Aggregate(results)

	out, err := store.New(*outputDir, logger)
	if err != nil {
		logger.Error("could not open output store", "error", err)
		return 1
	}

	var summary bytes.Buffer
	if err := analyze.WriteSummary(&summary, results, globals); err != nil {
		logger.Error("could not render summary", "error", err)
		return 1
	}
	if err := out.Put(summaryFileName, summary.Bytes()); err != nil {
		logger.Error("could not write summary", "error", err)
		return 1
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Error("could not marshal results", "error", err)
		return 1
	}
	if err := out.Put(resultsFileName, data); err != nil {
		logger.Error("could not write results", "error", err)
		return 1
	}

	logger.Info("analysis finished",
		"files", globals.TotalFiles,
		"error_files", globals.ErrorFiles,
		"empty_files", globals.EmptyFiles,
		"constant_price_files", globals.ConstantPriceFiles,
		"low_data_files", globals.LowDataPointFiles,
	)
	return 0
}
