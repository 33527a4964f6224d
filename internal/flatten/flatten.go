package flatten

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amirharati/polymarket-data/internal/model"
	"github.com/amirharati/polymarket-data/internal/store"
)

// JoinStats reports the outcome of a join pass.
type JoinStats struct {
	MarketsProcessed     int
	MarketRows           int
	EventRows            int
	MarketParseErrors    int
	EventParseErrors     int
	MissingEventFiles    int
	MarketsWithoutEvents int
}

// Joiner cross-references market batch files with downloaded event
// records and price histories, producing the denormalized market table
// and the deduplicated event table.
type Joiner struct {
	batchDir string
	events   *store.Store
	prices   *store.Store
	logger   *slog.Logger

	// seen de-duplicates event rows across every market processed by
	// this Joiner. An id stays marked even when its file is missing.
	seen map[string]struct{}
}

// NewJoiner builds a Joiner reading market batches from batchDir and
// event/price records from the given stores. A nil prices store makes
// every has_price_history column false.
func NewJoiner(batchDir string, events, prices *store.Store, logger *slog.Logger) *Joiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Joiner{
		batchDir: batchDir,
		events:   events,
		prices:   prices,
		logger:   logger,
		seen:     make(map[string]struct{}),
	}
}

// Run writes the market table to marketsOut and the event table to
// eventsOut, headers included. Per-record problems are counted and
// logged; only I/O failures on the inputs or outputs halt the pass.
func (j *Joiner) Run(marketsOut, eventsOut io.Writer) (JoinStats, error) {
	var stats JoinStats

	if _, err := io.WriteString(marketsOut, joinRow(MarketTableHeader())); err != nil {
		return stats, fmt.Errorf("writing market table header: %w", err)
	}
	if _, err := io.WriteString(eventsOut, joinRow(EventTableHeader())); err != nil {
		return stats, fmt.Errorf("writing event table header: %w", err)
	}

	files, err := batchFiles(j.batchDir)
	if err != nil {
		return stats, err
	}
	j.logger.Info("joining market batch files", "files", len(files), "columns", len(MarketTableHeader()))

	for _, path := range files {
		if err := j.joinFile(path, marketsOut, eventsOut, &stats); err != nil {
			return stats, err
		}
	}

	j.logger.Info("join complete",
		"markets_processed", stats.MarketsProcessed,
		"market_rows", stats.MarketRows,
		"event_rows", stats.EventRows,
		"market_parse_errors", stats.MarketParseErrors,
		"event_parse_errors", stats.EventParseErrors,
		"missing_event_files", stats.MissingEventFiles,
		"markets_without_events", stats.MarketsWithoutEvents)
	return stats, nil
}

func (j *Joiner) joinFile(path string, marketsOut, eventsOut io.Writer, stats *JoinStats) error {
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
		stats.MarketsProcessed++

		market, err := model.ParseRecord(line)
		if err != nil {
			j.logger.Error("skipping unparsable market line", "file", name, "line", lineNum, "error", err)
			stats.MarketParseErrors++
			continue
		}

		eventIDs, malformed := market.EventStubs()
		if malformed > 0 {
			marketID, _ := market.ID()
			j.logger.Warn("malformed event stubs in market", "market_id", marketID, "count", malformed)
		}
		if len(eventIDs) == 0 {
			stats.MarketsWithoutEvents++
		}

		firstEvent := j.loadFirstEvent(eventIDs, stats)
		if err := j.writeMarketRow(marketsOut, market, firstEvent, eventIDs); err != nil {
			return err
		}
		stats.MarketRows++

		if err := j.writeNewEvents(eventsOut, eventIDs, stats); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading batch file %s: %w", path, err)
	}
	return nil
}

// loadFirstEvent loads the record of the market's first linked event.
// A missing or unparsable file yields the zero Record, whose fields
// all render empty.
func (j *Joiner) loadFirstEvent(eventIDs []string, stats *JoinStats) model.Record {
	if len(eventIDs) == 0 {
		return model.Record{}
	}
	id := eventIDs[0]
	data, err := j.events.Read(store.EventFileName(id))
	if err != nil {
		// The event table pass reports the missing file once.
		return model.Record{}
	}
	event, err := model.ParseRecord(data)
	if err != nil {
		j.logger.Error("unparsable event file", "event_id", id, "error", err)
		stats.EventParseErrors++
		return model.Record{}
	}
	return event
}

func (j *Joiner) writeMarketRow(w io.Writer, market, firstEvent model.Record, eventIDs []string) error {
	values := make([]string, 0, len(marketFields)+len(eventFields)+2)
	for _, field := range marketFields {
		v, _ := market.Field(field)
		values = append(values, sanitize(v))
	}
	for _, field := range eventFields {
		v, _ := firstEvent.Field(field)
		values = append(values, sanitize(v))
	}
	values = append(values, sanitize(strings.Join(eventIDs, ",")))

	hasHistory := false
	if marketID, ok := market.ID(); ok && j.prices != nil {
		hasHistory = j.prices.ExistsNonEmpty(store.PriceHistoryFileName(marketID))
	}
	values = append(values, strconv.FormatBool(hasHistory))

	if _, err := io.WriteString(w, joinRow(values)); err != nil {
		return fmt.Errorf("writing market row: %w", err)
	}
	return nil
}

// writeNewEvents emits one event table row per first-sighted event id.
func (j *Joiner) writeNewEvents(w io.Writer, eventIDs []string, stats *JoinStats) error {
	for _, id := range eventIDs {
		if _, dup := j.seen[id]; dup {
			continue
		}
		j.seen[id] = struct{}{}

		data, err := j.events.Read(store.EventFileName(id))
		if err != nil {
			j.logger.Warn("event file missing", "event_id", id)
			stats.MissingEventFiles++
			continue
		}
		event, err := model.ParseRecord(data)
		if err != nil {
			j.logger.Error("unparsable event file", "event_id", id, "error", err)
			stats.EventParseErrors++
			continue
		}

		values := make([]string, 0, len(eventFields))
		for _, field := range eventFields {
			v, _ := event.Field(field)
			values = append(values, sanitize(v))
		}
		if _, err := io.WriteString(w, joinRow(values)); err != nil {
			return fmt.Errorf("writing event row: %w", err)
		}
		stats.EventRows++
	}
	return nil
}
