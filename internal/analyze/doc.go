// Package analyze computes descriptive statistics over downloaded
// price histories. Analysis is purely descriptive: malformed input
// degrades to recorded issue strings and absent statistics, never to
// an error that stops the batch.
package analyze
