package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationError is returned when input is rejected before any write happens
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a failure reported by the database
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// OperationFailure records one failed unit of a multi-part operation
type OperationFailure struct {
	ID  uuid.UUID `json:"id"`
	Op  string    `json:"op"`
	Err error     `json:"-"`
}

// PartialFailureError is returned when some independent sub-operations of a
// batch failed. Successful sub-operations are kept.
type PartialFailureError struct {
	Op        string
	Failures  []OperationFailure
	Succeeded int
}

func (e *PartialFailureError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, fmt.Sprintf("%s %s: %v", f.Op, f.ID, f.Err))
	}
	return fmt.Sprintf("%s: %d of %d operations failed: %s",
		e.Op, len(e.Failures), len(e.Failures)+e.Succeeded, strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As
func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// IsNotFound reports whether err stems from a missing row
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsConflict reports whether err stems from a unique or foreign key
// constraint violation
func IsConflict(err error) bool {
	return isDuplicateKey(err) || errors.Is(err, gorm.ErrForeignKeyViolated)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
