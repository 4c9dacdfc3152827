package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// NewAccountID returns a prefixed unique identifier for generated token
// accounts, e.g. "pot-<uuid>"
func NewAccountID(prefix string) string {
	return prefix + "-" + GenerateID()
}
