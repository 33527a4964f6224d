// Command watch-prices subscribes to the CLOB market WebSocket channel
// for a set of downloaded markets and logs live price changes. It is
// the live complement of the batch price downloader: token ids come
// from the same per-market JSON files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/amirharati/polymarket-data/internal/clob"
	"github.com/amirharati/polymarket-data/internal/logging"
	"github.com/amirharati/polymarket-data/internal/scan"
	"github.com/amirharati/polymarket-data/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	marketDetailsDir := flag.String("market-details-dir", "", "directory with per-market JSON files to derive asset ids from")
	assets := flag.String("assets", "", "comma-separated CLOB asset ids (overrides -market-details-dir)")
	maxAssets := flag.Int("max-assets", 100, "maximum number of assets to subscribe to")
	wsURL := flag.String("ws-url", clob.DefaultWSURL, "CLOB WebSocket URL")
	logFile := flag.String("log-file", "", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *assets == "" && *marketDetailsDir == "" {
		fmt.Fprintln(os.Stderr, "error: one of -assets or -market-details-dir is required")
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

	logger.Info("starting price watcher", "version", version.Version, "ws_url", *wsURL)

	var assetIDs []string
	if *assets != "" {
		for _, id := range strings.Split(*assets, ",") {
			if id = strings.TrimSpace(id); id != "" {
				assetIDs = append(assetIDs, id)
			}
		}
	} else {
		pairs, _, err := scan.TokenPairs(*marketDetailsDir, logger)
		if err != nil {
			logger.Error("could not extract market/token pairs", "error", err)
			return 1
		}
		for _, p := range pairs {
			assetIDs = append(assetIDs, p.TokenID)
		}
	}
	if len(assetIDs) == 0 {
		logger.Error("no asset ids to watch")
		return 1
	}
	if len(assetIDs) > *maxAssets {
		logger.Warn("truncating asset list", "total", len(assetIDs), "max", *maxAssets)
		assetIDs = assetIDs[:*maxAssets]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcher := clob.NewWatcher(*wsURL, assetIDs, func(pc clob.PriceChange) {
		logger.Info("price change",
			"asset_id", pc.AssetID,
			"market", pc.Market,
			"price", pc.Price,
			"side", pc.Side,
			"size", pc.Size,
			"timestamp", pc.Timestamp,
		)
	}, logger)

	logger.Info("subscribing", "assets", len(assetIDs))
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("watcher stopped", "error", err)
		return 1
	}
	logger.Info("price watcher stopped")
	return 0
}
