// Package model defines the shared record types for the pipeline.
//
// Market and event records arrive from the Gamma API with a loose,
// evolving shape, so they are represented as Record: raw JSON objects
// with typed accessors that normalize IDs and render fields for the
// flattened tables. Price history points are fully typed.
package model
