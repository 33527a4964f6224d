// Package fetch drives the two download loops: a bounded worker pool
// for per-ID fetch+save units of work, and a sequential offset-cursor
// loop for the paginated market listing.
//
// Neither loop retries within a run. Failed ids are enumerated in the
// run summary and picked up again on the next run, which resumes from
// the files already on disk.
package fetch
