package gamma

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amirharati/polymarket-data/internal/model"
)

// GetEvent fetches a single event's detail record. The raw body is
// returned alongside the parsed record; the body is what gets
// persisted, the record supplies the normalized id.
func (c *Client) GetEvent(ctx context.Context, eventID string) (json.RawMessage, model.Record, error) {
	body, err := c.get(ctx, "/events/"+eventID, nil)
	if err != nil {
		return nil, model.Record{}, fmt.Errorf("get event %s: %w", eventID, err)
	}

	record, err := model.ParseRecord(body)
	if err != nil {
		return nil, model.Record{}, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	if _, ok := record.ID(); !ok {
		return nil, model.Record{}, fmt.Errorf("event %s: response has no id", eventID)
	}

	return body, record, nil
}
