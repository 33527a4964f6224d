package analyze

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestAnalyzeSeries_ConstantPrice(t *testing.T) {
	data := []byte(`{"history":[{"t":0,"p":1.0},{"t":60,"p":1.0},{"t":120,"p":1.0}]}`)
	r := AnalyzeSeries("price_history_yes_1.json", data)

	if r.NumPoints != 3 {
		t.Errorf("NumPoints = %d, want 3", r.NumPoints)
	}
	if r.MeanPrice == nil || *r.MeanPrice != 1.0 {
		t.Errorf("MeanPrice = %v, want 1.0", r.MeanPrice)
	}
	if r.StdDevPrice == nil || *r.StdDevPrice != 0.0 {
		t.Errorf("StdDevPrice = %v, want 0.0", r.StdDevPrice)
	}
	if !r.HasIssue("Price is constant") {
		t.Errorf("missing constant-price issue, issues = %v", r.Issues)
	}

	td := r.TimeDeltas
	if td == nil {
		t.Fatal("TimeDeltas is nil")
	}
	if td.MinDeltaSeconds != 60 || td.MaxDeltaSeconds != 60 {
		t.Errorf("delta min/max = %d/%d, want 60/60", td.MinDeltaSeconds, td.MaxDeltaSeconds)
	}
	if td.MeanDeltaSeconds != 60 || td.MedianDeltaSeconds != 60 {
		t.Errorf("delta mean/median = %v/%v, want 60/60", td.MeanDeltaSeconds, td.MedianDeltaSeconds)
	}
	if td.NumDeltas != 2 {
		t.Errorf("NumDeltas = %d, want 2", td.NumDeltas)
	}
	if len(td.IrregularDeltas) != 0 {
		t.Errorf("IrregularDeltas = %v, want none", td.IrregularDeltas)
	}
}

func TestAnalyzeSeries_EmptyHistory(t *testing.T) {
	r := AnalyzeSeries("f.json", []byte(`{"history":[]}`))

	if r.NumPoints != 0 {
		t.Errorf("NumPoints = %d, want 0", r.NumPoints)
	}
	if r.MeanPrice != nil {
		t.Errorf("MeanPrice = %v, want nil", r.MeanPrice)
	}
	if !r.HasIssue("History list is empty.") {
		t.Errorf("issues = %v, want empty-history issue", r.Issues)
	}
}

func TestAnalyzeSeries_MalformedPointSkipped(t *testing.T) {
	data := []byte(`{"history":[
		{"t":0,"p":0.5},
		{"t":60},
		{"t":120,"p":0.6},
		{"t":180,"p":0.7}
	]}`)
	r := AnalyzeSeries("f.json", data)

	if r.NumPoints != 3 {
		t.Errorf("NumPoints = %d, want 3", r.NumPoints)
	}
	if !r.HasIssue("1 malformed data point(s) found and skipped.") {
		t.Errorf("issues = %v, want one-malformed-point issue", r.Issues)
	}
}

func TestAnalyzeSeries_InvalidJSON(t *testing.T) {
	r := AnalyzeSeries("bad.json", []byte("not json"))
	if !r.HasIssue("Invalid JSON format") {
		t.Errorf("issues = %v", r.Issues)
	}
	if r.MeanPrice != nil || r.TimeDeltas != nil {
		t.Error("stats should be absent for invalid JSON")
	}
}

func TestAnalyzeSeries_MissingHistoryKey(t *testing.T) {
	for _, body := range []string{`{}`, `{"history":"oops"}`} {
		r := AnalyzeSeries("f.json", []byte(body))
		if !r.HasIssue("No 'history' key found") {
			t.Errorf("body %s: issues = %v", body, r.Issues)
		}
	}
}

func TestAnalyzeSeries_SinglePoint(t *testing.T) {
	r := AnalyzeSeries("f.json", []byte(`{"history":[{"t":0,"p":0.5}]}`))

	if r.NumPoints != 1 {
		t.Errorf("NumPoints = %d, want 1", r.NumPoints)
	}
	if r.MeanPrice == nil || *r.MeanPrice != 0.5 {
		t.Errorf("MeanPrice = %v, want 0.5", r.MeanPrice)
	}
	// Sample standard deviation is undefined for one point: an issue is
	// reported instead of a default value.
	if r.StdDevPrice != nil {
		t.Errorf("StdDevPrice = %v, want nil", r.StdDevPrice)
	}
	if !r.HasIssue("Not enough data points (need at least 2)") {
		t.Errorf("issues = %v", r.Issues)
	}
	if !r.HasIssue("Very few data points (1).") {
		t.Errorf("issues = %v", r.Issues)
	}
	if r.TimeDeltas != nil {
		t.Errorf("TimeDeltas = %v, want nil for one point", r.TimeDeltas)
	}
}

func TestAnalyzeSeries_AllPointsMalformed(t *testing.T) {
	r := AnalyzeSeries("f.json", []byte(`{"history":[{"x":1},{"y":2}]}`))
	if r.NumPoints != 0 {
		t.Errorf("NumPoints = %d, want 0", r.NumPoints)
	}
	if !r.HasIssue("No valid price data points found after parsing.") {
		t.Errorf("issues = %v", r.Issues)
	}
}

func TestAnalyzeSeries_IrregularDeltas(t *testing.T) {
	data := []byte(`{"history":[
		{"t":0,"p":0.1},
		{"t":60,"p":0.2},
		{"t":180,"p":0.3},
		{"t":240,"p":0.4},
		{"t":360,"p":0.5}
	]}`)
	r := AnalyzeSeries("f.json", data)

	td := r.TimeDeltas
	if td == nil {
		t.Fatal("TimeDeltas is nil")
	}
	if td.MinDeltaSeconds != 60 || td.MaxDeltaSeconds != 120 {
		t.Errorf("delta min/max = %d/%d, want 60/120", td.MinDeltaSeconds, td.MaxDeltaSeconds)
	}
	if got := td.IrregularDeltas[120]; got != 2 {
		t.Errorf("IrregularDeltas[120] = %d, want 2", got)
	}
	if _, ok := td.IrregularDeltas[60]; ok {
		t.Error("canonical 60s delta should not be in the histogram")
	}
}

func TestAnalyzeSeries_StringNumbersTolerated(t *testing.T) {
	data := []byte(`{"history":[{"t":"0","p":"0.5"},{"t":"60","p":"0.6"}]}`)
	r := AnalyzeSeries("f.json", data)

	if r.NumPoints != 2 {
		t.Errorf("NumPoints = %d, want 2", r.NumPoints)
	}
	if r.MeanPrice == nil || *r.MeanPrice < 0.549 || *r.MeanPrice > 0.551 {
		t.Errorf("MeanPrice = %v, want ~0.55", r.MeanPrice)
	}
}

func TestAnalyzeSeries_TimeRange(t *testing.T) {
	data := []byte(`{"history":[{"t":1700000000,"p":0.5},{"t":1700000060,"p":0.6}]}`)
	r := AnalyzeSeries("f.json", data)

	if r.MinTime == nil || r.MaxTime == nil {
		t.Fatal("time range is nil")
	}
	if *r.MinTime != "2023-11-14T22:13:20Z" {
		t.Errorf("MinTime = %q", *r.MinTime)
	}
	if *r.MaxTime != "2023-11-14T22:14:20Z" {
		t.Errorf("MaxTime = %q", *r.MaxTime)
	}
}

func TestAnalyzeDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"price_history_yes_1.json": `{"history":[{"t":0,"p":1.0},{"t":60,"p":1.0},{"t":120,"p":1.0}]}`,
		"price_history_yes_2.json": `{"history":[]}`,
		"price_history_yes_3.json": `not json`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-JSON files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := AnalyzeDir(context.Background(), dir, 2, nil)
	if err != nil {
		t.Fatalf("AnalyzeDir() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	// Sorted by filename.
	for i, want := range []string{"price_history_yes_1.json", "price_history_yes_2.json", "price_history_yes_3.json"} {
		if results[i].Filename != want {
			t.Errorf("results[%d].Filename = %q, want %q", i, results[i].Filename, want)
		}
	}
	if !results[0].HasIssue("Price is constant") {
		t.Errorf("results[0].Issues = %v", results[0].Issues)
	}
	if !results[1].HasIssue("History list is empty.") {
		t.Errorf("results[1].Issues = %v", results[1].Issues)
	}
	if !results[2].HasIssue("Invalid JSON format") {
		t.Errorf("results[2].Issues = %v", results[2].Issues)
	}
}

func TestStats(t *testing.T) {
	if got := mean([]float64{1, 2, 3}); got != 2 {
		t.Errorf("mean = %v", got)
	}
	if got := sampleStdDev([]float64{2, 4}); got < 1.414 || got > 1.415 {
		t.Errorf("sampleStdDev = %v, want ~1.4142", got)
	}
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("median odd = %v", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("median even = %v", got)
	}
}
