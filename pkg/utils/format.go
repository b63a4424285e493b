// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatConfidence formats a confidence value in [0,1] as a percentage.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.0f%%", c*100)
}

// FormatLevels joins price levels as reported by the model for display.
func FormatLevels(levels []string) string {
	if len(levels) == 0 {
		return "-"
	}
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strings.TrimSpace(l)
	}
	return strings.Join(parts, ", ")
}

// FormatQuota formats a remaining quota where -1 means unlimited.
func FormatQuota(quota int) string {
	if quota < 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", quota)
}

// TruncateText truncates text to maxLen runes, appending an ellipsis.
func TruncateText(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// FormatBytes formats a byte count in human-readable form.
func FormatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
