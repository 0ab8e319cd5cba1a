package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrValidation indicates bad input shape or an unresolvable reference.
	ErrValidation = errors.New("accounting: validation failed")
	// ErrUnbalanced indicates debit != credit beyond tolerance.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrUnknownAccount indicates a journal line references a missing account.
	ErrUnknownAccount = errors.New("accounting: unknown account")
	// ErrNotFound indicates a lookup by id missed.
	ErrNotFound = errors.New("accounting: not found")
	// ErrDataSource indicates a collaborator read or write failed.
	ErrDataSource = errors.New("accounting: data source failure")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("accounting: validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("accounting: validation failed: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// UnbalancedEntryError carries the totals of a rejected posting.
type UnbalancedEntryError struct {
	TotalDebits  float64
	TotalCredits float64
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("accounting: journal lines must balance (debits %.2f, credits %.2f)", e.TotalDebits, e.TotalCredits)
}

func (e *UnbalancedEntryError) Is(target error) bool { return target == ErrUnbalanced }

// UnknownAccountError names the account id that failed to resolve.
// Line is -1 when the header account is the culprit.
type UnknownAccountError struct {
	AccountID uuid.UUID
	Line      int
}

func (e *UnknownAccountError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("accounting: unknown account %s on entry header", e.AccountID)
	}
	return fmt.Sprintf("accounting: unknown account %s on line %d", e.AccountID, e.Line)
}

func (e *UnknownAccountError) Is(target error) bool { return target == ErrUnknownAccount }

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("accounting: %s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// DataSourceError wraps a collaborator failure with the operation name.
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("accounting: %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

func (e *DataSourceError) Is(target error) bool { return target == ErrDataSource }

// Source classifies a collaborator error. Errors that already belong to the
// taxonomy pass through untouched so a store may report not-found or a
// duplicate key as such.
func Source(op string, err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}
	return &DataSourceError{Op: op, Err: err}
}

func isClassified(err error) bool {
	for _, target := range []error{ErrValidation, ErrUnbalanced, ErrUnknownAccount, ErrNotFound, ErrDataSource} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
