package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection marks an unreachable endpoint or bad credentials.
	// Non-retryable here; callers fall back for reads and skip writes.
	ErrConnection = errors.New("graph store connection failed")

	// ErrWrite marks a statement-level failure inside a write transaction.
	ErrWrite = errors.New("graph store write failed")

	// ErrRead marks a failed read transaction.
	ErrRead = errors.New("graph store read failed")
)

// WriteError reports which statement in a batch failed. The whole batch is
// rolled back by the store; Row is the index for diagnostics only.
type WriteError struct {
	Row   int
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed at row %d: %v", e.Row, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }
