package utils

import "strings"

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// PreviewIDs joins ids for a log line, truncated to limit runes.
func PreviewIDs(ids []string, limit int) string {
	return TruncateForLog(strings.Join(ids, ","), limit)
}
