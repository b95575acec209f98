package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

const recordIDPrefix = "cb-"

var recordIDPattern = regexp.MustCompile(`^cb-[0-9a-f]{8}$`)

// NewRecordID generates a record id: the fixed prefix followed by 8 random hex
// characters from a cryptographically secure source.
func NewRecordID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return recordIDPrefix + hex.EncodeToString(b), nil
}

// IsRecordID reports whether s has the canonical record id shape.
func IsRecordID(s string) bool {
	return recordIDPattern.MatchString(s)
}
