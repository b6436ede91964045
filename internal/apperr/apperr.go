package apperr

import "fmt"

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError: the referenced profile, achievement, boost or content row
// does not exist.
type NotFoundError struct {
	Resource   string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Identifier)
}

// ConflictError: a conditional write's precondition failed, usually because
// a concurrent caller got there first.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Reason)
}

// StoreError wraps a failed persistence call.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
