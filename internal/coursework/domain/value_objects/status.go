package value_objects

import (
	"errors"
	"strings"
)

// Status represents the task lifecycle state.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
)

var ErrInvalidStatus = errors.New("invalid status value")

var statusNames = map[Status]string{
	StatusPending:    "pending",
	StatusInProgress: "in_progress",
	StatusCompleted:  "completed",
}

var statusValues = map[string]Status{
	"pending":     StatusPending,
	"in_progress": StatusInProgress,
	"completed":   StatusCompleted,
}

// ParseStatus creates a Status from a string.
func ParseStatus(s string) (Status, error) {
	st, ok := statusValues[strings.ToLower(s)]
	if !ok {
		return StatusPending, ErrInvalidStatus
	}
	return st, nil
}

// String returns the string representation of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the status is a valid value.
func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}
