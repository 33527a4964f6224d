package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/amirharati/polymarket-data/internal/model"
	"github.com/amirharati/polymarket-data/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEventIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "markets_offset_0_limit_2.jsonl",
		`{"id":"1","events":[{"id":"100"},{"id":"200"}]}
{"id":"2","events":[{"id":"200"}]}
`)
	writeFile(t, dir, "markets_offset_2_limit_2.jsonl",
		`{"id":"3","events":[{"id":"050"}]}
not json at all
`)
	// Files that are not batch files are ignored.
	writeFile(t, dir, "notes.txt", "irrelevant")

	ids, malformed, err := EventIDs(dir, nil)
	if err != nil {
		t.Fatalf("EventIDs() error = %v", err)
	}
	want := []string{"050", "100", "200"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("EventIDs() = %v, want %v", ids, want)
	}
	if malformed != 1 {
		t.Errorf("EventIDs() malformed = %d, want 1", malformed)
	}
}

func TestTokenPairs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "market_1.json", `{"id":"1","clobTokenIds":"[\"111\",\"112\"]"}`)
	writeFile(t, dir, "market_2.json", `{"id":"2","clobTokenIds":"[]"}`)
	writeFile(t, dir, "market_3.json", `{"id":"3"}`)
	writeFile(t, dir, "event_9.json", `{"id":"9"}`)

	pairs, skipped, err := TokenPairs(dir, nil)
	if err != nil {
		t.Fatalf("TokenPairs() error = %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("TokenPairs() = %v, want one pair", pairs)
	}
	if pairs[0].MarketID != "1" || pairs[0].TokenID != "111" {
		t.Errorf("TokenPairs()[0] = %+v, want market 1 token 111", pairs[0])
	}
	if skipped != 2 {
		t.Errorf("TokenPairs() skipped = %d, want 2", skipped)
	}
}

func TestOffsetWatermark(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "markets_offset_0_limit_20.jsonl", `{"id":"1"}`)
	writeFile(t, dir, "markets_offset_40_limit_20.jsonl", `{"id":"2"}`)
	// Zero-byte file below the watermark is a hole, not completed work.
	writeFile(t, dir, "markets_offset_20_limit_20.jsonl", "")

	w, err := OffsetWatermark(dir, 20)
	if err != nil {
		t.Fatalf("OffsetWatermark() error = %v", err)
	}
	if w.NextOffset != 60 {
		t.Errorf("NextOffset = %d, want 60", w.NextOffset)
	}
	if !reflect.DeepEqual(w.Holes, []int{20}) {
		t.Errorf("Holes = %v, want [20]", w.Holes)
	}
}

func TestOffsetWatermark_EmptyDir(t *testing.T) {
	w, err := OffsetWatermark(t.TempDir(), 20)
	if err != nil {
		t.Fatalf("OffsetWatermark() error = %v", err)
	}
	if w.NextOffset != 0 || len(w.Holes) != 0 {
		t.Errorf("OffsetWatermark() = %+v, want zero watermark", w)
	}
}

func TestOffsetWatermark_MissingDir(t *testing.T) {
	w, err := OffsetWatermark(filepath.Join(t.TempDir(), "nope"), 20)
	if err != nil {
		t.Fatalf("OffsetWatermark() error = %v", err)
	}
	if w.NextOffset != 0 {
		t.Errorf("NextOffset = %d, want 0", w.NextOffset)
	}
}

func TestPending_ExactSetDifference(t *testing.T) {
	s, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(store.EventFileName("b"), []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(store.EventFileName("d"), []byte("x")); err != nil {
		t.Fatal(err)
	}
	// Zero-byte file does not count as done.
	if err := os.WriteFile(filepath.Join(s.Dir(), store.EventFileName("e")), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	// Order of the input set must not affect the difference.
	for _, ids := range [][]string{
		{"a", "b", "c", "d", "e"},
		{"e", "d", "c", "b", "a"},
	} {
		pending, done := Pending(ids, s, store.EventFileName)
		if done != 2 {
			t.Errorf("Pending(%v) done = %d, want 2", ids, done)
		}
		got := map[string]bool{}
		for _, id := range pending {
			got[id] = true
		}
		for _, id := range []string{"a", "c", "e"} {
			if !got[id] {
				t.Errorf("Pending(%v) missing %q", ids, id)
			}
		}
		if len(pending) != 3 {
			t.Errorf("Pending(%v) = %v, want 3 ids", ids, pending)
		}
	}
}

func TestPendingPairs(t *testing.T) {
	s, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(store.PriceHistoryFileName("1"), []byte(`{"history":[]}`)); err != nil {
		t.Fatal(err)
	}

	in := []model.TokenPair{
		{MarketID: "1", TokenID: "111"},
		{MarketID: "2", TokenID: "222"},
	}
	pending, done := PendingPairs(in, s)
	if done != 1 {
		t.Errorf("PendingPairs() done = %d, want 1", done)
	}
	if len(pending) != 1 || pending[0].MarketID != "2" {
		t.Errorf("PendingPairs() = %v, want market 2 only", pending)
	}
}
