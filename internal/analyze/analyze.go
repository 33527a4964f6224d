package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// The canonical spacing between price points; other gaps are reported
// in the irregular-delta histogram.
const expectedDeltaSeconds = 60

// Series with fewer valid points than this are flagged for downstream
// filtering.
const fewPointsThreshold = 5

// TimeDeltaStats summarizes the gaps between successive timestamps.
type TimeDeltaStats struct {
	MinDeltaSeconds    int64         `json:"min_delta_seconds"`
	MaxDeltaSeconds    int64         `json:"max_delta_seconds"`
	MeanDeltaSeconds   float64       `json:"mean_delta_seconds"`
	MedianDeltaSeconds float64       `json:"median_delta_seconds"`
	NumDeltas          int           `json:"num_deltas"`
	IrregularDeltas    map[int64]int `json:"non_60_second_deltas,omitempty"`
}

// Result is the per-series analysis summary. Absent statistics are
// nil, matching the "issue instead of default value" contract.
type Result struct {
	Filename    string          `json:"filename"`
	NumPoints   int             `json:"num_points"`
	MeanPrice   *float64        `json:"mean_price"`
	StdDevPrice *float64        `json:"std_dev_price"`
	MinTime     *string         `json:"min_time"`
	MaxTime     *string         `json:"max_time"`
	TimeDeltas  *TimeDeltaStats `json:"time_delta_stats,omitempty"`
	Issues      []string        `json:"issues"`
}

func (r *Result) addIssue(format string, args ...any) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// HasIssue reports whether any issue contains the given substring.
func (r *Result) HasIssue(substr string) bool {
	return strings.Contains(strings.Join(r.Issues, "; "), substr)
}

// AnalyzeSeries analyzes one price history body. Every failure mode
// degrades to an issue string; the function never returns an error.
func AnalyzeSeries(filename string, data []byte) Result {
	result := Result{Filename: filename, Issues: []string{}}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		result.addIssue("Invalid JSON format: %s", filename)
		return result
	}

	rawHistory, ok := fields["history"]
	if !ok {
		result.addIssue("No 'history' key found, history is not a list, or history is empty.")
		return result
	}
	var points []json.RawMessage
	if err := json.Unmarshal(rawHistory, &points); err != nil {
		result.addIssue("No 'history' key found, history is not a list, or history is empty.")
		return result
	}
	if len(points) == 0 {
		result.addIssue("History list is empty.")
		return result
	}

	var prices []float64
	var timestamps []int64
	malformed := 0
	for _, raw := range points {
		price, ts, ok := parsePoint(raw)
		if !ok {
			malformed++
			continue
		}
		prices = append(prices, price)
		timestamps = append(timestamps, ts)
	}

	if malformed > 0 {
		result.addIssue("%d malformed data point(s) found and skipped.", malformed)
	}

	result.NumPoints = len(prices)
	if len(prices) == 0 {
		result.addIssue("No valid price data points found after parsing.")
		return result
	}

	m := mean(prices)
	result.MeanPrice = &m

	if result.NumPoints < 2 {
		result.addIssue("Not enough data points (need at least 2) to calculate standard deviation.")
	} else {
		sd := sampleStdDev(prices)
		result.StdDevPrice = &sd
		if sd == 0 {
			result.addIssue("Price is constant throughout the file (StdDev is 0).")
		}
	}

	analyzeTimestamps(&result, timestamps)

	if result.NumPoints < fewPointsThreshold {
		result.addIssue("Very few data points (%d).", result.NumPoints)
	}

	return result
}

// analyzeTimestamps fills in the time range and the successive-delta
// statistics, computed in received order.
func analyzeTimestamps(result *Result, timestamps []int64) {
	minTS, maxTS := timestamps[0], timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts < minTS {
			minTS = ts
		}
		if ts > maxTS {
			maxTS = ts
		}
	}
	minStr := time.Unix(minTS, 0).UTC().Format(time.RFC3339)
	maxStr := time.Unix(maxTS, 0).UTC().Format(time.RFC3339)
	result.MinTime = &minStr
	result.MaxTime = &maxStr

	if len(timestamps) < 2 {
		return
	}

	deltas := make([]int64, 0, len(timestamps)-1)
	floats := make([]float64, 0, len(timestamps)-1)
	for i := 0; i < len(timestamps)-1; i++ {
		d := timestamps[i+1] - timestamps[i]
		deltas = append(deltas, d)
		floats = append(floats, float64(d))
	}

	lo, hi := minMax(floats)
	stats := &TimeDeltaStats{
		MinDeltaSeconds:    int64(lo),
		MaxDeltaSeconds:    int64(hi),
		MeanDeltaSeconds:   round2(mean(floats)),
		MedianDeltaSeconds: median(floats),
		NumDeltas:          len(deltas),
	}

	irregular := make(map[int64]int)
	for _, d := range deltas {
		if d != expectedDeltaSeconds {
			irregular[d]++
		}
	}
	if len(irregular) > 0 {
		stats.IrregularDeltas = irregular
	}

	result.TimeDeltas = stats
}

// parsePoint extracts (price, timestamp) from one history entry.
// Prices parse from numbers or numeric strings; timestamps from
// integers, integer strings, or floats (truncated).
func parsePoint(raw json.RawMessage) (price float64, ts int64, ok bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, 0, false
	}
	rawPrice, hasPrice := obj["p"]
	rawTS, hasTS := obj["t"]
	if !hasPrice || !hasTS {
		return 0, 0, false
	}

	price, ok = parseFloatValue(rawPrice)
	if !ok {
		return 0, 0, false
	}
	ts, ok = parseIntValue(rawTS)
	if !ok {
		return 0, 0, false
	}
	return price, ts, true
}

func parseFloatValue(raw json.RawMessage) (float64, bool) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		f, err := num.Float64()
		return f, err == nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func parseIntValue(raw json.RawMessage) (int64, bool) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if i, err := num.Int64(); err == nil {
			return i, true
		}
		if f, err := num.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		i, err := strconv.ParseInt(s, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// AnalyzeDir analyzes every .json file in dir with bounded parallelism
// and returns the results sorted by filename.
func AnalyzeDir(ctx context.Context, dir string, workers int, logger *slog.Logger) ([]Result, error) {
	if workers <= 0 {
		workers = DefaultAnalysisWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read price data directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".json") {
			files = append(files, entry.Name())
		}
	}
	logger.Info("analyzing price history files", "count", len(files), "workers", workers)

	results := make([]Result, 0, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range files {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var result Result
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				result = Result{
					Filename: name,
					Issues:   []string{fmt.Sprintf("Error processing file %s: %v", name, err)},
				}
			} else {
				result = AnalyzeSeries(name, data)
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Filename < results[j].Filename })
	return results, nil
}

// DefaultAnalysisWorkers bounds the parallel analysis pass.
const DefaultAnalysisWorkers = 8
