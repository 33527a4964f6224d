// Command load-db imports the flattened market and event tables into
// PostgreSQL. Rows are keyed by entity id and inserted with ON
// CONFLICT DO NOTHING, so reloading after a partial failure is safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/amirharati/polymarket-data/internal/config"
	"github.com/amirharati/polymarket-data/internal/database"
	"github.com/amirharati/polymarket-data/internal/flatten"
	"github.com/amirharati/polymarket-data/internal/logging"
	"github.com/amirharati/polymarket-data/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/loader.yaml", "path to the loader config file")
	marketsTSV := flag.String("markets-tsv", "", "path to the flattened market table (empty skips it)")
	eventsTSV := flag.String("events-tsv", "", "path to the flattened event table (empty skips it)")
	logFile := flag.String("log-file", "", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *marketsTSV == "" && *eventsTSV == "" {
		fmt.Fprintln(os.Stderr, "error: at least one of -markets-tsv or -events-tsv is required")
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

	logger.Info("starting database loader",
		"version", version.Version,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return 1
	}
	defer pool.Close()

	loader := database.NewLoader(pool, cfg.Loader.BatchSize, logger)

	tables := []struct {
		spec database.TableSpec
		path string
	}{
		{database.TableSpec{Name: "markets", Columns: flatten.MarketTableHeader()}, *marketsTSV},
		{database.TableSpec{Name: "events", Columns: flatten.EventTableHeader()}, *eventsTSV},
	}
	for _, t := range tables {
		if t.path == "" {
			continue
		}
		if err := loader.EnsureTable(ctx, t.spec); err != nil {
			logger.Error("failed to ensure table", "table", t.spec.Name, "error", err)
			return 1
		}
		stats, err := loader.LoadTSV(ctx, t.spec, t.path)
		if err != nil {
			logger.Error("failed to load table", "table", t.spec.Name, "error", err)
			return 1
		}
		logger.Info("table import complete",
			"table", t.spec.Name,
			"rows", stats.Rows,
			"inserted", stats.Inserted,
			"conflicts", stats.Conflicts,
			"malformed", stats.Malformed,
		)
	}

	logger.Info("database load finished")
	return 0
}
