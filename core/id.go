package core

import "github.com/google/uuid"

// NewID generates a new unique identifier for threads and synthesized tool
// call ids.
func NewID() string { return uuid.NewString() }
