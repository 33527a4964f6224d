package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Market status filters accepted by ListMarkets.
const (
	StatusClosed = "closed"
	StatusOpen   = "open"
	StatusAll    = "all"
)

// ListMarketsOptions configures a ListMarkets request.
type ListMarketsOptions struct {
	Limit  int
	Offset int

	// Status is one of StatusClosed, StatusOpen, StatusAll. Closed
	// maps to the API's closed=true parameter, open to closed=false,
	// all omits the parameter. Anything else falls back to all.
	Status string

	// Optional scheduled-date filters, YYYY-MM-DD.
	StartDateMin string
	StartDateMax string
	EndDateMin   string
	EndDateMax   string
}

// ListMarkets fetches one page of markets. The response is a JSON array;
// each element is returned raw so batch files preserve the API's bytes.
func (c *Client) ListMarkets(ctx context.Context, opts ListMarketsOptions) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	query.Set("offset", strconv.Itoa(opts.Offset))

	switch opts.Status {
	case StatusClosed:
		query.Set("closed", "true")
	case StatusOpen:
		query.Set("closed", "false")
	case StatusAll, "":
	default:
		c.logger.Warn("invalid status filter, fetching all statuses", "status", opts.Status)
	}

	if opts.StartDateMin != "" {
		query.Set("start_date_min", opts.StartDateMin)
	}
	if opts.StartDateMax != "" {
		query.Set("start_date_max", opts.StartDateMax)
	}
	if opts.EndDateMin != "" {
		query.Set("end_date_min", opts.EndDateMin)
	}
	if opts.EndDateMax != "" {
		query.Set("end_date_max", opts.EndDateMax)
	}

	body, err := c.get(ctx, "/markets", query)
	if err != nil {
		return nil, fmt.Errorf("list markets offset %d: %w", opts.Offset, err)
	}

	var markets []json.RawMessage
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("decode markets offset %d: %w", opts.Offset, err)
	}

	return markets, nil
}
