// Package flatten projects downloaded market and event records onto a
// fixed tab-separated column schema. It splits market batch files into
// per-market JSON files, joins markets with their linked events into a
// denormalized market table plus a deduplicated event table, and
// exports per-market price series as two-column TSV files.
package flatten
