// Command process-data reshapes downloaded data into tabular form:
// it splits market batch files into per-market JSON files, joins
// markets with their linked events into a denormalized market table
// plus a deduplicated event table, and exports each market's price
// history as a two-column TSV.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/amirharati/polymarket-data/internal/flatten"
	"github.com/amirharati/polymarket-data/internal/logging"
	"github.com/amirharati/polymarket-data/internal/store"
	"github.com/amirharati/polymarket-data/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	marketDataDir := flag.String("market-data-dir", "", "directory with market batch files (required)")
	eventDetailsDir := flag.String("event-details-dir", "", "directory with event detail files (required unless -skip-join)")
	marketOutputDir := flag.String("market-output-dir", "", "directory for per-market JSON files (required unless -skip-split)")
	marketsTSV := flag.String("markets-tsv", "", "output path for the market table (required unless -skip-join)")
	eventsTSV := flag.String("events-tsv", "", "output path for the event table (required unless -skip-join)")
	priceHistoryDir := flag.String("price-history-dir", "", "directory with downloaded price histories (empty skips the price export)")
	priceSeriesDir := flag.String("price-series-dir", "", "directory for per-market price TSVs (required with -price-history-dir)")
	skipSplit := flag.Bool("skip-split", false, "skip writing per-market JSON files")
	skipJoin := flag.Bool("skip-join", false, "skip the market/event table join")
	logFile := flag.String("log-file", "process_data.log", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *marketDataDir == "" {
		fmt.Fprintln(os.Stderr, "error: -market-data-dir is required")
		flag.Usage()
		return 1
	}
	if !*skipSplit && *marketOutputDir == "" {
		fmt.Fprintln(os.Stderr, "error: -market-output-dir is required unless -skip-split")
		return 1
	}
	if !*skipJoin && (*eventDetailsDir == "" || *marketsTSV == "" || *eventsTSV == "") {
		fmt.Fprintln(os.Stderr, "error: -event-details-dir, -markets-tsv, and -events-tsv are required unless -skip-join")
		return 1
	}
	if *priceHistoryDir != "" && *priceSeriesDir == "" {
		fmt.Fprintln(os.Stderr, "error: -price-series-dir is required with -price-history-dir")
		return 1
	}

	logger, closeLog, err := logging.Setup(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer closeLog()
	logger = logger.With("run_id", uuid.NewString())

	logger.Info("starting data processing",
		"version", version.Version,
		"market_data_dir", *marketDataDir,
		"schema_version", flatten.SchemaVersion,
	)

	if !*skipSplit {
		out, err := store.New(*marketOutputDir, logger)
		if err != nil {
			logger.Error("could not open market output store", "error", err)
			return 1
		}
		if _, err := flatten.SplitMarkets(*marketDataDir, out, logger); err != nil {
			logger.Error("market split failed", "error", err)
			return 1
		}
	}

	if !*skipJoin {
		events, err := store.New(*eventDetailsDir, logger)
		if err != nil {
			logger.Error("could not open event store", "error", err)
			return 1
		}
		var prices *store.Store
		if *priceHistoryDir != "" {
			if prices, err = store.New(*priceHistoryDir, logger); err != nil {
				logger.Error("could not open price history store", "error", err)
				return 1
			}
		}

		joiner := flatten.NewJoiner(*marketDataDir, events, prices, logger)
		if err := writeTables(joiner, *marketsTSV, *eventsTSV); err != nil {
			logger.Error("join failed", "error", err)
			return 1
		}
	}

	if *priceHistoryDir != "" {
		out, err := store.New(*priceSeriesDir, logger)
		if err != nil {
			logger.Error("could not open price series store", "error", err)
			return 1
		}
		if _, err := flatten.ExportPriceSeries(*priceHistoryDir, out, logger); err != nil {
			logger.Error("price series export failed", "error", err)
			return 1
		}
	}

	logger.Info("data processing finished")
	return 0
}

// writeTables runs the join with buffered writers over freshly
// truncated output files.
func writeTables(joiner *flatten.Joiner, marketsTSV, eventsTSV string) error {
	marketsFile, err := os.Create(marketsTSV)
	if err != nil {
		return fmt.Errorf("creating market table %s: %w", marketsTSV, err)
	}
	defer marketsFile.Close()

	eventsFile, err := os.Create(eventsTSV)
	if err != nil {
		return fmt.Errorf("creating event table %s: %w", eventsTSV, err)
	}
	defer eventsFile.Close()

	marketsOut := bufio.NewWriter(marketsFile)
	eventsOut := bufio.NewWriter(eventsFile)

	if _, err := joiner.Run(marketsOut, eventsOut); err != nil {
		return err
	}
	if err := marketsOut.Flush(); err != nil {
		return fmt.Errorf("flushing market table: %w", err)
	}
	if err := eventsOut.Flush(); err != nil {
		return fmt.Errorf("flushing event table: %w", err)
	}
	if err := marketsFile.Close(); err != nil {
		return fmt.Errorf("closing market table: %w", err)
	}
	if err := eventsFile.Close(); err != nil {
		return fmt.Errorf("closing event table: %w", err)
	}
	return nil
}
