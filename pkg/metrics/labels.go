package metrics

import "strings"

// normalizeLabel keeps label values bounded; blank values collapse to "unknown".
func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
