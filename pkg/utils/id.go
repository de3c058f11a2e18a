package utils

import "github.com/google/uuid"

// GenerateID returns a random id carrying the given prefix, e.g. "session-<uuid>".
func GenerateID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}
