// Package gamma provides the client for the Polymarket Gamma API.
//
// Endpoints used by the pipeline:
//   - GET /markets?limit&offset (paginated market listing, JSON array)
//   - GET /events/{id} (single event detail, 404 for missing)
//
// Responses are kept as raw JSON so the persisted files are exactly
// what the API returned. The client performs no retries: a failed run
// is retried by rerunning the tool, which resumes from the files
// already on disk.
package gamma
