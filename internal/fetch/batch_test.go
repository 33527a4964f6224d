package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/amirharati/polymarket-data/internal/scan"
	"github.com/amirharati/polymarket-data/internal/store"
)

func pagesFetcher(t *testing.T, pages map[int][]string, calls *[]int) PageFetcher {
	t.Helper()
	return func(ctx context.Context, offset int) ([]json.RawMessage, error) {
		*calls = append(*calls, offset)
		var out []json.RawMessage
		for _, rec := range pages[offset] {
			out = append(out, json.RawMessage(rec))
		}
		return out, nil
	}
}

func TestBatchRunner_RunToCompletion(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	pages := map[int][]string{
		0: {`{"id":"1"}`, `{"id":"2"}`},
		2: {`{"id":"3"}`},
	}
	var calls []int
	runner := NewBatchRunner(BatchConfig{Limit: 2}, s, pagesFetcher(t, pages, &calls), nil)

	result := runner.Run(context.Background(), scan.Watermark{})
	if result.State != StateDone {
		t.Fatalf("State = %q, want done (err: %v)", result.State, result.Err)
	}
	if result.PagesSaved != 2 {
		t.Errorf("PagesSaved = %d, want 2", result.PagesSaved)
	}
	if !reflect.DeepEqual(calls, []int{0, 2, 4}) {
		t.Errorf("fetched offsets = %v, want [0 2 4]", calls)
	}

	data, err := s.Read(store.BatchFileName(0, 2))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := `{"id":"1"}` + "\n" + `{"id":"2"}` + "\n"
	if string(data) != want {
		t.Errorf("batch file = %q, want %q", data, want)
	}
}

func TestBatchRunner_RefetchesHolesFirst(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Simulate an earlier interrupted run: offset 2 complete, offset 0
	// left as a zero-byte file.
	if err := os.WriteFile(filepath.Join(dir, store.BatchFileName(0, 2)), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(store.BatchFileName(2, 2), []byte(`{"id":"3"}`+"\n")); err != nil {
		t.Fatal(err)
	}

	w, err := scan.OffsetWatermark(dir, 2)
	if err != nil {
		t.Fatal(err)
	}

	pages := map[int][]string{
		0: {`{"id":"1"}`, `{"id":"2"}`},
	}
	var calls []int
	runner := NewBatchRunner(BatchConfig{Limit: 2}, s, pagesFetcher(t, pages, &calls), nil)

	result := runner.Run(context.Background(), w)
	if result.State != StateDone {
		t.Fatalf("State = %q, want done", result.State)
	}
	// The hole at offset 0 is re-fetched before resuming at offset 4.
	if !reflect.DeepEqual(calls, []int{0, 4}) {
		t.Errorf("fetched offsets = %v, want [0 4]", calls)
	}
	if !s.ExistsNonEmpty(store.BatchFileName(0, 2)) {
		t.Error("hole at offset 0 was not filled")
	}
}

func TestBatchRunner_FetchFailureHalts(t *testing.T) {
	s, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	var calls []int
	failing := func(ctx context.Context, offset int) ([]json.RawMessage, error) {
		calls = append(calls, offset)
		if offset == 2 {
			return nil, errors.New("upstream 500")
		}
		return []json.RawMessage{json.RawMessage(fmt.Sprintf(`{"id":"%d"}`, offset))}, nil
	}

	runner := NewBatchRunner(BatchConfig{Limit: 2}, s, failing, nil)
	result := runner.Run(context.Background(), scan.Watermark{})

	if result.State != StateFetchFailed {
		t.Fatalf("State = %q, want fetch_failed", result.State)
	}
	if result.Err == nil {
		t.Error("Err is nil for a failed run")
	}
	if result.PagesSaved != 1 {
		t.Errorf("PagesSaved = %d, want 1", result.PagesSaved)
	}
	if result.LastOffset != 2 {
		t.Errorf("LastOffset = %d, want 2", result.LastOffset)
	}
	// Later offsets never run.
	if !reflect.DeepEqual(calls, []int{0, 2}) {
		t.Errorf("fetched offsets = %v, want [0 2]", calls)
	}
}

func TestBatchRunner_CanceledContext(t *testing.T) {
	s, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewBatchRunner(BatchConfig{Limit: 2}, s, func(ctx context.Context, offset int) ([]json.RawMessage, error) {
		t.Error("fetch called after cancellation")
		return nil, nil
	}, nil)

	result := runner.Run(ctx, scan.Watermark{})
	if result.State != StateCanceled {
		t.Errorf("State = %q, want canceled", result.State)
	}
}

func TestBatchRunner_SecondRunFetchesNothingNew(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	pages := map[int][]string{
		0: {`{"id":"1"}`, `{"id":"2"}`},
		2: {`{"id":"3"}`},
	}

	var firstCalls []int
	runner := NewBatchRunner(BatchConfig{Limit: 2}, s, pagesFetcher(t, pages, &firstCalls), nil)
	if result := runner.Run(context.Background(), scan.Watermark{}); result.State != StateDone {
		t.Fatalf("first run state = %q", result.State)
	}

	w, err := scan.OffsetWatermark(dir, 2)
	if err != nil {
		t.Fatal(err)
	}

	var secondCalls []int
	runner = NewBatchRunner(BatchConfig{Limit: 2}, s, pagesFetcher(t, pages, &secondCalls), nil)
	result := runner.Run(context.Background(), w)
	if result.State != StateDone {
		t.Fatalf("second run state = %q", result.State)
	}
	if result.PagesSaved != 0 {
		t.Errorf("second run PagesSaved = %d, want 0", result.PagesSaved)
	}
	// Only the end-of-data probe at the watermark runs again.
	if !reflect.DeepEqual(secondCalls, []int{4}) {
		t.Errorf("second run offsets = %v, want [4]", secondCalls)
	}
}
