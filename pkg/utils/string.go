package utils

// Truncate shortens s to maxLen bytes, appending an ellipsis when cut.
// Long decision content becomes display titles this way.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
