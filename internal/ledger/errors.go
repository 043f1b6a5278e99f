package ledger

import "fmt"

// ValidationError: bad or missing input. The operation was aborted before any
// write happened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError: a referenced product or sale id does not exist. No-op.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// PersistenceError: the storage layer failed. The enclosing transaction was
// rolled back, prior state is unchanged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
