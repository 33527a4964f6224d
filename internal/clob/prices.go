package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// APIError represents a non-2xx response from the CLOB API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clob api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the error is a 404. Tokens without any
// trading history return 404; the downloader treats that like any other
// fetch failure, eligible for retry on the next run.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// GetPriceHistory fetches the full price history for a CLOB token.
// The raw response body is returned for persistence after validating
// that it carries a history list; numPoints is the list length.
func (c *Client) GetPriceHistory(ctx context.Context, tokenID string, startTs, endTs int64) (body json.RawMessage, numPoints int, err error) {
	query := url.Values{}
	query.Set("market", tokenID)
	query.Set("startTs", strconv.FormatInt(startTs, 10))
	query.Set("endTs", strconv.FormatInt(endTs, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/prices-history?"+query.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("get price history: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, 0, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	numPoints, err = validateHistory(body)
	if err != nil {
		return nil, 0, err
	}

	return body, numPoints, nil
}

// validateHistory checks that the body is an object with a history
// list. Point contents are not validated here; the analyzer tolerates
// malformed points individually.
func validateHistory(body []byte) (int, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return 0, fmt.Errorf("decode price history: %w", err)
	}

	raw, ok := fields["history"]
	if !ok {
		return 0, fmt.Errorf("price history response has no history list")
	}

	var points []json.RawMessage
	if err := json.Unmarshal(raw, &points); err != nil {
		return 0, fmt.Errorf("price history field is not a list: %w", err)
	}

	return len(points), nil
}
