package utils

import "strings"

// ParseBoolean reads a form checkbox value. Anything unrecognised is false.
func ParseBoolean(value string) bool {
	switch strings.TrimSpace(value) {
	case "true", "True", "TRUE", "1", "on", "yes":
		return true
	default:
		return false
	}
}
