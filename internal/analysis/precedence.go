package analysis

import "strings"

var placeholders = map[string]bool{
	"n/a":             true,
	"unknown school":  true,
	"unknown teacher": true,
	"name":            true,
}

// IsPlaceholder reports whether a header value is empty or a known stand-in for a missing value.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || placeholders[strings.ToLower(v)]
}

func usableCallerValue(v string) bool {
	return !IsPlaceholder(v) && !strings.EqualFold(strings.TrimSpace(v), "unknown")
}

// ApplyPrecedence overwrites model-inferred header fields with caller-supplied values.
// A caller value wins whenever it is present and not itself a placeholder.
func ApplyPrecedence(h *Header, meta Metadata) {
	if h == nil {
		return
	}
	override := func(dst *string, v string) {
		if usableCallerValue(v) {
			*dst = strings.TrimSpace(v)
		}
	}
	override(&h.Facilitator, meta.Facilitator)
	override(&h.School, meta.School)
	override(&h.Grade, meta.Grade)
	override(&h.Section, meta.Section)
	override(&h.Subject, meta.Subject)
	override(&h.Date, meta.Date)
}
