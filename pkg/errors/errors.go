package errors

import (
	"errors"
	"fmt"
)

// Standard error codes
const (
	CodeValidationError       = "VALIDATION_ERROR"
	CodeNotFound              = "RESOURCE_NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeInsufficientInventory = "INSUFFICIENT_INVENTORY"
	CodeNoEligibleCarrier     = "NO_ELIGIBLE_CARRIER"
	CodeResourceBusy          = "RESOURCE_BUSY"
	CodeInternalError         = "INTERNAL_ERROR"
)

// AppError represents an application error with a stable code
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap wraps an existing error
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates a new AppError
func NewAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ErrNotFoundWithID creates a not found error carrying the missing ID
func ErrNotFoundWithID(resource, id string) *AppError {
	return ErrNotFound(resource).WithDetail("id", id)
}

// ErrAlreadyExists creates a duplicate resource error
func ErrAlreadyExists(resource, id string) *AppError {
	return NewAppError(CodeAlreadyExists, fmt.Sprintf("%s %s already exists", resource, id))
}

// ErrConflict creates a conflict error
func ErrConflict(message string) *AppError {
	return NewAppError(CodeConflict, message)
}

// ErrInsufficientInventory creates an insufficient inventory error.
// Partial allocations made before the shortfall are not rolled back; the
// caller must inspect per-line allocated quantities.
func ErrInsufficientInventory(sku string, requested, allocated int) *AppError {
	return NewAppError(CodeInsufficientInventory,
		fmt.Sprintf("insufficient inventory for %s: requested %d, allocated %d", sku, requested, allocated)).
		WithDetail("sku", sku).
		WithDetail("requested", fmt.Sprintf("%d", requested)).
		WithDetail("allocated", fmt.Sprintf("%d", allocated))
}

// ErrNoEligibleCarrier creates a carrier selection failure
func ErrNoEligibleCarrier(destination string) *AppError {
	return NewAppError(CodeNoEligibleCarrier,
		fmt.Sprintf("no carrier covers %s with the required capabilities", destination)).
		WithDetail("destination", destination)
}

// ErrResourceBusy creates a busy-resource error for task assignment
func ErrResourceBusy(resource, id string) *AppError {
	return NewAppError(CodeResourceBusy, fmt.Sprintf("%s already has an active task", resource)).
		WithDetail("id", id)
}

// ErrInternal creates an internal error
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message)
}

// IsCode reports whether err is an AppError with the given code
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError converts a standard error to an AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return ErrInternal("").Wrap(err)
}
