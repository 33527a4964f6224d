// Command filter-prices selects price series from a previous analysis
// run using criteria loaded from a YAML file, and writes the passing
// filenames one per line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/amirharati/polymarket-data/internal/analyze"
	"github.com/amirharati/polymarket-data/internal/logging"
	"github.com/amirharati/polymarket-data/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	resultsFile := flag.String("results-file", "analysis_results.json", "path to the analysis results JSON")
	criteriaFile := flag.String("criteria-file", "", "path to the YAML criteria file (required)")
	outputFile := flag.String("output-file", "filtered_filenames.txt", "path for the passing filename list")
	logFile := flag.String("log-file", "", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *criteriaFile == "" {
		fmt.Fprintln(os.Stderr, "error: -criteria-file is required")
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

	logger.Info("starting price filter",
		"version", version.Version,
		"results_file", *resultsFile,
		"criteria_file", *criteriaFile,
	)

	data, err := os.ReadFile(*resultsFile)
	if err != nil {
		logger.Error("could not read analysis results (run analyze-prices first)", "error", err)
		return 1
	}
	var results []analyze.Result
	if err := json.Unmarshal(data, &results); err != nil {
		logger.Error("could not decode analysis results", "error", err)
		return 1
	}
	logger.Info("loaded analysis results", "files", len(results))

	criteria, err := analyze.LoadCriteria(*criteriaFile)
	if err != nil {
		logger.Error("could not load criteria", "error", err)
		return 1
	}

	passed := criteria.Apply(results)
	logger.Info("filter applied", "passed", len(passed), "total", len(results))

	var out strings.Builder
	for _, name := range passed {
		out.WriteString(name)
		out.WriteByte('\n')
	}
	if err := os.WriteFile(*outputFile, []byte(out.String()), 0o644); err != nil {
		logger.Error("could not write filtered filename list", "error", err)
		return 1
	}
	logger.Info("filtered filename list saved", "path", *outputFile)
	return 0
}
