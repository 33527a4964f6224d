package flatten

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/amirharati/polymarket-data/internal/model"
	"github.com/amirharati/polymarket-data/internal/store"
)

// maxLineBytes bounds a single market record line. Matches the scan
// package limit.
const maxLineBytes = 16 * 1024 * 1024

// SplitStats reports the outcome of splitting batch files into
// per-market JSON files.
type SplitStats struct {
	Saved  int
	Errors int
}

// SplitMarkets reads every market batch file under batchDir and writes
// each market object to its own market_{id}.json in the output store.
// Records without an id and unparsable lines are counted and skipped.
func SplitMarkets(batchDir string, out *store.Store, logger *slog.Logger) (SplitStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := batchFiles(batchDir)
	if err != nil {
		return SplitStats{}, err
	}
	logger.Info("splitting market batch files", "files", len(files))

	var stats SplitStats
	for _, path := range files {
		if err := splitFile(path, out, logger, &stats); err != nil {
			return stats, err
		}
	}

	logger.Info("market split complete", "saved", stats.Saved, "errors", stats.Errors)
	return stats, nil
}

func splitFile(path string, out *store.Store, logger *slog.Logger, stats *SplitStats) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening batch file %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		rec, err := model.ParseRecord(line)
		if err != nil {
			logger.Error("skipping unparsable market line", "file", name, "line", lineNum, "error", err)
			stats.Errors++
			continue
		}
		id, ok := rec.ID()
		if !ok {
			logger.Warn("skipping market line without id", "file", name, "line", lineNum)
			stats.Errors++
			continue
		}

		if err := out.Put(store.MarketFileName(id), append([]byte(nil), line...)); err != nil {
			logger.Error("writing market file", "market_id", id, "error", err)
			stats.Errors++
			continue
		}
		stats.Saved++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading batch file %s: %w", path, err)
	}
	return nil
}

// batchFiles lists market batch files in offset order.
func batchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading batch directory %s: %w", dir, err)
	}

	type batch struct {
		path   string
		offset int
	}
	var batches []batch
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		offset, ok := store.ParseBatchFileName(e.Name())
		if !ok {
			continue
		}
		batches = append(batches, batch{path: filepath.Join(dir, e.Name()), offset: offset})
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].offset < batches[j].offset })

	paths := make([]string, len(batches))
	for i, b := range batches {
		paths[i] = b.path
	}
	return paths, nil
}
