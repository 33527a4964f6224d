package flatten

import "strings"

var tsvSanitizer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// sanitize replaces characters that would break tab-delimited rows
// with single spaces.
func sanitize(v string) string {
	return tsvSanitizer.Replace(v)
}

// joinRow joins pre-sanitized values with tabs. Callers pass every
// value through sanitize first.
func joinRow(values []string) string {
	return strings.Join(values, "\t") + "\n"
}
