// Package store provides write-once, rename-into-place persistence for
// downloaded entities, keyed by deterministic file names. Presence of a
// non-empty file is the resume contract for the whole pipeline: a reader
// either sees a complete file or nothing.
package store
