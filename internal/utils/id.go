package utils

import (
	"github.com/google/uuid"
)

// NewID returns a time-ordered UUID (v7) for a new entity.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// v7 only fails when the random source fails
		return uuid.NewString()
	}
	return id.String()
}

// EnsureID returns id, or a fresh one when it is empty.
func EnsureID(id string) string {
	if id != "" {
		return id
	}
	return NewID()
}
