package services

import (
	"errors"
	"fmt"
)

// Sentinels carried by StateError. Match them with errors.Is.
var (
	ErrSessionNotActive        = errors.New("session not active")
	ErrSessionAlreadyFinalized = errors.New("session already finalized")
	ErrTableHasActiveSession   = errors.New("table already has an active session")
)

// NotFoundError reports an absent token, table, user, product or option.
type NotFoundError struct {
	Entity string
	Key    interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

// ValidationError reports a malformed request or an unsatisfiable catalog
// rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type ProductUnavailableError struct {
	ProductID  uint
	LocationID uint
	Reason     string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is not available at location %d: %s", e.ProductID, e.LocationID, e.Reason)
}

// OptionSelectionError covers options that do not apply to the product and
// per-option-type cardinality violations.
type OptionSelectionError struct {
	ProductID    uint
	OptionTypeID uint
	OptionID     uint
	Reason       string
}

func (e *OptionSelectionError) Error() string {
	switch {
	case e.OptionID != 0:
		return fmt.Sprintf("option %d for product %d: %s", e.OptionID, e.ProductID, e.Reason)
	case e.OptionTypeID != 0:
		return fmt.Sprintf("option type %d for product %d: %s", e.OptionTypeID, e.ProductID, e.Reason)
	default:
		return fmt.Sprintf("options for product %d: %s", e.ProductID, e.Reason)
	}
}

// StateError reports an operation that is invalid for the session's current
// state.
type StateError struct {
	SessionID uint
	State     string
	Err       error
}

func (e *StateError) Error() string {
	if e.SessionID == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("session %d (%s): %v", e.SessionID, e.State, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

func notFound(entity string, key interface{}) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
