package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError
	ErrValidation = errors.New("invalid degree data")

	// ErrEmptyPending is returned when mining is requested with nothing pending
	ErrEmptyPending = errors.New("no pending transactions to mine")

	// ErrMiningInProgress is returned when a second mining call overlaps the first
	ErrMiningInProgress = errors.New("mining already in progress")
)

// ValidationError identifies the submitted field that failed a check
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps a store failure. Op is "load" or "save".
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s ledger state: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
