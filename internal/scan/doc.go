// Package scan derives the remaining work for a run from what is
// already on disk. It is strictly read-only: event-ID sets and
// market/token pairs come from the downloaded files, and the paginated
// downloader's resume watermark comes from the batch file names.
package scan
