package handler

import "strings"

const redacted = "[REDACTED]"

// Sanitize masks every sensitive value appearing in a client-facing message.
// Values are applied in order; empty values are skipped.
func Sanitize(message string, sensitive []string) string {
	for _, v := range sensitive {
		if v == "" {
			continue
		}
		message = strings.ReplaceAll(message, v, redacted)
	}
	return message
}
