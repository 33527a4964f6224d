package flatten

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/amirharati/polymarket-data/internal/model"
	"github.com/amirharati/polymarket-data/internal/store"
)

const (
	priceHistoryPrefix = "price_history_yes_"
	priceHistorySuffix = ".json"
)

// ExportStats reports the outcome of a price series export pass.
type ExportStats struct {
	Exported int
	Empty    int
	Errors   int
}

// ExportPriceSeries converts every downloaded price history under
// historyDir into a two-column TSV file in the output store. Series
// that fail to decode are counted and skipped; empty histories produce
// no file.
func ExportPriceSeries(historyDir string, out *store.Store, logger *slog.Logger) (ExportStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(historyDir)
	if err != nil {
		return ExportStats{}, fmt.Errorf("reading price history directory %s: %w", historyDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, priceHistoryPrefix) && strings.HasSuffix(name, priceHistorySuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	logger.Info("exporting price series", "files", len(names))

	history, err := store.New(historyDir, logger)
	if err != nil {
		return ExportStats{}, err
	}

	var stats ExportStats
	for _, name := range names {
		marketID := strings.TrimSuffix(strings.TrimPrefix(name, priceHistoryPrefix), priceHistorySuffix)
		if marketID == "" {
			continue
		}

		data, err := history.Read(name)
		if err != nil {
			logger.Error("reading price history", "file", name, "error", err)
			stats.Errors++
			continue
		}

		points, err := decodeHistory(data)
		if err != nil {
			logger.Error("decoding price history", "file", name, "error", err)
			stats.Errors++
			continue
		}
		if len(points) == 0 {
			stats.Empty++
			continue
		}

		if err := out.Put(store.PriceSeriesFileName(marketID), renderSeries(points)); err != nil {
			logger.Error("writing price series", "market_id", marketID, "error", err)
			stats.Errors++
			continue
		}
		stats.Exported++
	}

	logger.Info("price series export complete",
		"exported", stats.Exported, "empty", stats.Empty, "errors", stats.Errors)
	return stats, nil
}

func decodeHistory(data []byte) ([]model.PricePoint, error) {
	var payload struct {
		History []model.PricePoint `json:"history"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload.History, nil
}

func renderSeries(points []model.PricePoint) []byte {
	var buf bytes.Buffer
	buf.WriteString("timestamp\tprice\n")
	for _, p := range points {
		buf.WriteString(strconv.FormatInt(p.Timestamp, 10))
		buf.WriteByte('\t')
		buf.WriteString(strconv.FormatFloat(p.Price, 'g', -1, 64))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
