// Package clob provides the client for the Polymarket CLOB API:
// the prices-history REST endpoint used by the batch downloader, and
// the market WebSocket channel used by the live price watcher.
package clob
