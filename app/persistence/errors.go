package persistence

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
)

const sqliteConstraint = 19 // primary result code, extended codes keep it in the low byte

var (
	// ErrPersistence matches any PersistenceError with errors.Is
	ErrPersistence = errors.New("persistence failure")
	// ErrNotFound returned when a lookup expected to find a row found none
	ErrNotFound = errors.New("not found")
	// ErrTimeout returned when the wait for a unit of work expired. The work itself keeps running.
	ErrTimeout = errors.New("timeout waiting for database")
)

// PersistenceError reports a write which affected no rows, or was rejected by a constraint
type PersistenceError struct {
	Op  string
	Key string
	Err error // underlying database error, nil if the write simply affected nothing
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: no rows affected", e.Op, e.Key)
}

// Unwrap returns underlying database error
func (e *PersistenceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPersistence) work
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// CleanupError is a failed secondary delete. It is reported to the caller
// along with the result and never aborts the primary delete.
type CleanupError struct {
	Op  string
	Key string
	Err error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup %s %s failed: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns underlying database error
func (e *CleanupError) Unwrap() error { return e.Err }

// isConstraintError checks for sqlite constraint violation, i.e. duplicate primary key
func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqliteConstraint
	}
	return false
}

// writeError makes PersistenceError for a failed write, database errors other than
// constraint violations are passed through wrapped
func writeError(op, key string, err error) error {
	if isConstraintError(err) {
		return &PersistenceError{Op: op, Key: key, Err: err}
	}
	return fmt.Errorf("failed to %s %s: %w", op, key, err)
}
