package store

import (
	"fmt"
	"regexp"
	"strconv"
)

// File-naming scheme shared by the downloaders and the processing tools.
// Batch files embed their offset so the resume watermark can be derived
// from the directory listing alone.

var batchFilePattern = regexp.MustCompile(`^markets_offset_(\d+)_limit_\d+\.jsonl$`)

// BatchFileName names a page of market records fetched at offset.
func BatchFileName(offset, limit int) string {
	return fmt.Sprintf("markets_offset_%d_limit_%d.jsonl", offset, limit)
}

// ParseBatchFileName extracts the offset from a batch file name.
func ParseBatchFileName(name string) (offset int, ok bool) {
	m := batchFilePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	offset, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return offset, true
}

// EventFileName names a single event detail record.
func EventFileName(eventID string) string {
	return "event_" + eventID + ".json"
}

// MarketFileName names a single market record split out of a batch.
func MarketFileName(marketID string) string {
	return "market_" + marketID + ".json"
}

// PriceHistoryFileName names the YES-outcome price history for a market.
func PriceHistoryFileName(marketID string) string {
	return "price_history_yes_" + marketID + ".json"
}

// PriceSeriesFileName names the tabular per-market price export.
func PriceSeriesFileName(marketID string) string {
	return "prices_" + marketID + ".tsv"
}
