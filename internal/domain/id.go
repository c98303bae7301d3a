package domain

import "github.com/google/uuid"

// NewCycleID creates a new unique cycle identifier.
func NewCycleID() string {
	return uuid.New().String()
}
