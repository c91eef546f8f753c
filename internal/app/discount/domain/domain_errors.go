package domain

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every domain error matches exactly one of these with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// kindError is a sentinel that unwraps to its kind.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

// Domain errors as sentinel values
var (
	// Lookup errors
	ErrDiscountRequestNotFound = newError(ErrNotFound, "discount request not found")
	ErrProductNotFound         = newError(ErrNotFound, "product not found")
	ErrPatientNotFound         = newError(ErrNotFound, "patient not found")

	// Value errors
	ErrInvalidPercentage    = newError(ErrValidation, "discount percentage must be a decimal number")
	ErrPercentageOutOfRange = newError(ErrValidation, "discount percentage must be greater than 0 and at most 100")
	ErrPercentageTooPrecise = newError(ErrValidation, "discount percentage must have at most 2 decimal places")
	ErrPatientRequired      = newError(ErrValidation, "patient_id is required when the discount is not global")
	ErrInvalidQuantity      = newError(ErrValidation, "quantity must be at least 1")
	ErrNegativeUnitPrice    = newError(ErrValidation, "unit price cannot be negative")
	ErrUnitPriceTooPrecise  = newError(ErrValidation, "unit price must have at most 2 decimal places")

	// Lifecycle errors
	ErrAlreadyDecided     = newError(ErrConflict, "discount request has already been decided")
	ErrNotRequestOwner    = newError(ErrForbidden, "only the requester or an admin can modify this discount request")
	ErrRequestNotEditable = newError(ErrForbidden, "discount request can only be modified while pending")
	ErrNotAllowedToDecide = newError(ErrForbidden, "not allowed to approve or reject this discount request")
	ErrNotAllowedToView   = newError(ErrForbidden, "not allowed to view this discount request")
	ErrAdminRequired      = newError(ErrForbidden, "admin role required")
)

// ValidationError collects field-level messages.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// FieldError returns a ValidationError for a single field.
func FieldError(field, msg string) error {
	v := NewValidationError()
	v.Add(field, msg)
	return v
}

// Add records a message for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// AddErr records err's message for field.
func (e *ValidationError) AddErr(field string, err error) {
	e.Add(field, err.Error())
}

// OrNil returns e when it holds messages and nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
