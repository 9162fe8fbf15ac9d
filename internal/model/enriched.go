package model

import "strings"

// Severity labels produced by the classification step.
const (
	SeverityHigh    = "High"
	SeverityMedium  = "Medium"
	SeverityLow     = "Low"
	SeverityUnknown = "Unknown"
	SeverityError   = "Error"
)

// EnrichedRecord is a RawRecord plus derived text fields. The derived
// fields are append-only outputs; prior columns are never rewritten.
type EnrichedRecord struct {
	RawRecord
	Summary  string
	Severity string
}

// ErrorMarker formats the visible cell value for a failed enrichment, so a
// failed row still occupies its output position instead of being dropped.
func ErrorMarker(category string) string {
	return "Error: " + category
}

// IsErrorMarked reports whether a derived field holds a failure marker.
func IsErrorMarked(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "Error:")
}

// NormalizeSeverity maps a raw classification reply onto a canonical label.
// Anything outside the three known levels is Unknown.
func NormalizeSeverity(reply string) string {
	switch strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(reply), "."))) {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	}
	return SeverityUnknown
}
