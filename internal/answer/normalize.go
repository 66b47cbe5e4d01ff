// Package answer canonicalizes raw agent output into the answer string
// the scoring API expects.
package answer

import "strings"

// Prefixes the agent is instructed to emit, checked in order. At most
// one is removed per call.
var finalAnswerPrefixes = []string{
	"FINAL ANSWER:",
	"FINAL ANSWER :",
}

// Normalize strips a single leading "FINAL ANSWER:" (or "FINAL ANSWER :")
// prefix from raw and trims surrounding whitespace. It is pure, total,
// and idempotent; an empty result is valid.
func Normalize(raw string) string {
	for _, prefix := range finalAnswerPrefixes {
		if strings.HasPrefix(raw, prefix) {
			raw = raw[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(raw)
}
