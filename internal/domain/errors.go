package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBusinessRule   = errors.New("business rule violation")
	ErrInfrastructure = errors.New("infrastructure error")
)

// ValidationError reports a single field that failed a validator rule.
// It carries the field name and the offending value so callers (and the
// HTTP error mapper) can surface precise diagnostics. Use
// errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr)
// to access the field details.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError reports a missing entity by resource kind and id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s %s", e.Resource, e.ID, ErrNotFound.Error())
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// UnauthorizedError reports an action disallowed for the given actor/resource
// pair. Part of the taxonomy for future authorization checks; the current use
// cases do not raise it.
type UnauthorizedError struct {
	Action   string
	Resource string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s to %s %s", ErrUnauthorized.Error(), e.Action, e.Resource)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// BusinessRuleError reports a cross-field or cross-entity invariant
// violation outside simple field validation.
type BusinessRuleError struct {
	Rule string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBusinessRule.Error(), e.Rule)
}

func (e *BusinessRuleError) Unwrap() error {
	return ErrBusinessRule
}

// InfrastructureError wraps a lower-layer failure, preserving the original
// error for errors.Is/errors.As inspection.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrInfrastructure.Error(), e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// Is reports ErrInfrastructure in addition to the wrapped chain, so both
// errors.Is(err, ErrInfrastructure) and errors.Is(err, <original>) hold.
func (e *InfrastructureError) Is(target error) bool {
	return target == ErrInfrastructure
}
