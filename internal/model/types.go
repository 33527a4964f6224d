package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Record is a market or event object as returned by the Gamma API.
// Fields are kept in their raw decoded form; accessors normalize the
// pieces the pipeline actually depends on (the id, the linked event
// stubs) and render everything else to strings for tabular output.
type Record struct {
	fields map[string]any
}

// ParseRecord decodes a single JSON object into a Record.
// Numbers are preserved as json.Number so large token IDs survive intact.
func ParseRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return Record{fields: fields}, nil
}

// ID returns the record's id normalized to a string. The API reports
// ids as strings or integers depending on the entity kind.
func (r Record) ID() (string, bool) {
	return normalizeID(r.fields["id"])
}

// Field renders the named field as a string for tabular output.
// Absent and null fields render as the empty string with ok=false.
// Arrays and objects render as compact JSON.
func (r Record) Field(key string) (value string, ok bool) {
	v, present := r.fields[key]
	if !present || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

// EventStubs returns the ids of the events embedded in a market record,
// in source order. Entries without a usable id are counted as malformed
// rather than failing the record.
func (r Record) EventStubs() (ids []string, malformed int) {
	raw, present := r.fields["events"]
	if !present {
		return nil, 0
	}
	list, isList := raw.([]any)
	if !isList {
		return nil, 1
	}
	for _, entry := range list {
		obj, isObj := entry.(map[string]any)
		if !isObj {
			malformed++
			continue
		}
		id, ok := normalizeID(obj["id"])
		if !ok {
			malformed++
			continue
		}
		ids = append(ids, id)
	}
	return ids, malformed
}

// ClobTokenIDs parses the clobTokenIds field, which the API delivers as
// a JSON array encoded inside a JSON string.
func (r Record) ClobTokenIDs() ([]string, error) {
	raw, present := r.fields["clobTokenIds"]
	if !present || raw == nil {
		return nil, nil
	}
	encoded, isString := raw.(string)
	if !isString || encoded == "" {
		return nil, fmt.Errorf("clobTokenIds is not a string")
	}

	var tokens []string
	if err := json.Unmarshal([]byte(encoded), &tokens); err != nil {
		return nil, fmt.Errorf("parse clobTokenIds: %w", err)
	}
	return tokens, nil
}

// Keys returns the record's field names, sorted.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeID(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// PricePoint is one observation in a token's price history.
type PricePoint struct {
	Timestamp int64   `json:"t"`
	Price     float64 `json:"p"`
}

// TokenPair associates a market with the token whose history is fetched
// (the first CLOB token, by convention the YES outcome).
type TokenPair struct {
	MarketID string
	TokenID  string
}
