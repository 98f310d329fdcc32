// Package utils contains small helper functions used across the project.
//
// These are usually generic helpers that don't belong to a specific domain.
package utils

import "time"

// ISOTimestampLayout renders instants the way JavaScript's toISOString does:
// UTC with millisecond precision and a literal Z suffix.
const ISOTimestampLayout = "2006-01-02T15:04:05.000Z"

// ISOTimestamp formats t as an ISO-8601 UTC instant.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(ISOTimestampLayout)
}
