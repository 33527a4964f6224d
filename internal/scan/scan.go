package scan

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amirharati/polymarket-data/internal/model"
	"github.com/amirharati/polymarket-data/internal/store"
)

// Lines in a batch file hold whole market objects and can run long.
const maxLineBytes = 16 * 1024 * 1024

// EventIDs scans the batch files in dir and returns the distinct event
// ids referenced by any market, sorted. Malformed lines and event stubs
// are skipped and counted, never fatal.
func EventIDs(dir string, logger *slog.Logger) (ids []string, malformed int, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read market data directory: %w", err)
	}

	seen := make(map[string]struct{})
	for _, entry := range entries {
		if _, ok := store.ParseBatchFileName(entry.Name()); !ok {
			continue
		}
		fileMalformed, err := scanBatchFile(filepath.Join(dir, entry.Name()), func(r model.Record) {
			stubs, bad := r.EventStubs()
			malformed += bad
			for _, id := range stubs {
				seen[id] = struct{}{}
			}
		})
		malformed += fileMalformed
		if err != nil {
			logger.Error("could not read batch file", "file", entry.Name(), "err", err)
			continue
		}
	}

	ids = make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	logger.Info("extracted unique event ids", "count", len(ids), "malformed", malformed)
	return ids, malformed, nil
}

// TokenPairs scans the per-market files in dir and returns one
// (market id, first CLOB token id) pair per market that declares any
// tokens. Files without usable tokens are counted as skipped.
func TokenPairs(dir string, logger *slog.Logger) (pairs []model.TokenPair, skipped int, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read market details directory: %w", err)
	}

	for _, entry := range entries {
		marketID, ok := marketIDFromFileName(entry.Name())
		if !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Error("could not read market file", "file", entry.Name(), "err", err)
			skipped++
			continue
		}
		record, err := model.ParseRecord(data)
		if err != nil {
			logger.Error("could not parse market file", "file", entry.Name(), "err", err)
			skipped++
			continue
		}

		tokens, err := record.ClobTokenIDs()
		if err != nil {
			logger.Warn("skipping market with invalid clobTokenIds", "market_id", marketID, "err", err)
			skipped++
			continue
		}
		if len(tokens) == 0 {
			skipped++
			continue
		}

		pairs = append(pairs, model.TokenPair{MarketID: marketID, TokenID: tokens[0]})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].MarketID < pairs[j].MarketID })

	logger.Info("extracted market/token pairs", "count", len(pairs), "skipped", skipped)
	return pairs, skipped, nil
}

// Watermark describes where the paginated downloader should resume.
type Watermark struct {
	// NextOffset is one page past the highest complete batch file,
	// or 0 when no complete batch exists.
	NextOffset int

	// Holes are offsets below the watermark whose batch file is
	// missing or zero-length. They are re-fetched before the loop
	// continues past NextOffset.
	Holes []int
}

// OffsetWatermark computes the resume watermark for batch files in dir.
func OffsetWatermark(dir string, limit int) (Watermark, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Watermark{}, nil
		}
		return Watermark{}, fmt.Errorf("read output directory: %w", err)
	}

	complete := make(map[int]bool)
	maxSaved := -limit
	for _, entry := range entries {
		offset, ok := store.ParseBatchFileName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		complete[offset] = true
		if offset > maxSaved {
			maxSaved = offset
		}
	}

	w := Watermark{NextOffset: maxSaved + limit}
	for offset := 0; offset < w.NextOffset; offset += limit {
		if !complete[offset] {
			w.Holes = append(w.Holes, offset)
		}
	}
	return w, nil
}

// Pending returns the subset of ids with no complete output file in s,
// preserving input order. The set difference is exact: an id is pending
// iff its file is missing or empty.
func Pending(ids []string, s *store.Store, name func(id string) string) (pending []string, done int) {
	for _, id := range ids {
		if s.ExistsNonEmpty(name(id)) {
			done++
			continue
		}
		pending = append(pending, id)
	}
	return pending, done
}

// PendingPairs filters token pairs the same way, keyed by market id.
func PendingPairs(pairs []model.TokenPair, s *store.Store) (pending []model.TokenPair, done int) {
	for _, p := range pairs {
		if s.ExistsNonEmpty(store.PriceHistoryFileName(p.MarketID)) {
			done++
			continue
		}
		pending = append(pending, p)
	}
	return pending, done
}

func scanBatchFile(path string, visit func(model.Record)) (malformed int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		record, err := model.ParseRecord([]byte(line))
		if err != nil {
			malformed++
			continue
		}
		visit(record)
	}
	return malformed, scanner.Err()
}

func marketIDFromFileName(name string) (string, bool) {
	if !strings.HasPrefix(name, "market_") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, "market_"), ".json")
	return id, id != ""
}
