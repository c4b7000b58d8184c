package store

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned for operations on a position the store does not hold
	ErrIndexOutOfRange = errors.New("task index out of range")

	// ErrCorrupt marks a backing file that could not be parsed
	ErrCorrupt = errors.New("task file is corrupted")
)

// LoadError reports a failed load. The store is empty after one.
type LoadError struct {
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load tasks from %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// PersistError reports a failed write. In-memory state is kept.
type PersistError struct {
	Location string
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save tasks to %s: %v", e.Location, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err came from an unparseable backing file
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
