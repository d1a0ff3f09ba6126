package util

import "github.com/google/uuid"

// GenerateUUID returns a new random v4 identifier. It never fails: the
// callers sit on absorbed-failure paths that must not abort the process.
func GenerateUUID() string {
	return uuid.NewString()
}
