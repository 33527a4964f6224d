package clob

import (
	"log/slog"
	"net/http"
	"time"
)

// Default CLOB endpoints.
const (
	DefaultBaseURL = "https://clob.polymarket.com"
	DefaultWSURL   = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
)

// Price history is fetched over the full token lifetime: from the
// epoch to a far-future cutoff.
const (
	HistoryStartTs = 0
	HistoryEndTs   = 2_000_000_000
)

// Client provides access to the CLOB REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new CLOB API client. Price histories can be
// large, so the default timeout is higher than the Gamma client's.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
