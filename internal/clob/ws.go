package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// PriceChange is one price update from the market WebSocket channel.
type PriceChange struct {
	AssetID   string `json:"asset_id"`
	Market    string `json:"market"`
	Price     string `json:"price"`
	Side      string `json:"side"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
}

// PriceHandler receives price changes from a Watcher.
type PriceHandler func(PriceChange)

// Watcher maintains a subscription to the CLOB market channel for a
// fixed set of asset ids.
type Watcher struct {
	url      string
	assetIDs []string
	handler  PriceHandler
	logger   *slog.Logger
}

// NewWatcher creates a Watcher. An empty url uses DefaultWSURL.
func NewWatcher(url string, assetIDs []string, handler PriceHandler, logger *slog.Logger) *Watcher {
	if url == "" {
		url = DefaultWSURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		url:      url,
		assetIDs: assetIDs,
		handler:  handler,
		logger:   logger,
	}
}

// Run connects, subscribes, and dispatches price changes to the
// handler until the context is canceled or the connection fails.
func (w *Watcher) Run(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", w.url, err)
	}
	defer conn.Close()

	sub := struct {
		AssetIDs []string `json:"assets_ids"`
		Type     string   `json:"type"`
	}{
		AssetIDs: w.assetIDs,
		Type:     "market",
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	w.logger.Info("subscribed to market channel", "assets", len(w.assetIDs))

	// Close the connection when the context is canceled so the read
	// loop unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
		case <-done:
		}
	}()

	go w.keepalive(ctx, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}
		w.dispatch(data)
	}
}

// dispatch parses one frame. The channel delivers either a single event
// object or an array of them.
func (w *Watcher) dispatch(data []byte) {
	var events []json.RawMessage
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &events); err != nil {
			w.logger.Warn("unparsable frame", "err", err)
			return
		}
	} else {
		events = []json.RawMessage{data}
	}

	for _, raw := range events {
		var envelope struct {
			EventType string `json:"event_type"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			w.logger.Warn("unparsable event", "err", err)
			continue
		}
		if envelope.EventType != "price_change" {
			continue
		}

		var change PriceChange
		if err := json.Unmarshal(raw, &change); err != nil {
			w.logger.Warn("unparsable price change", "err", err)
			continue
		}
		if w.handler != nil {
			w.handler(change)
		}
	}
}

// keepalive sends periodic pings so the server keeps the subscription
// open during quiet markets.
func (w *Watcher) keepalive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				w.logger.Debug("failed to send ping", "err", err)
				return
			}
		}
	}
}
