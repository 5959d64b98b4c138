package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive    ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeValidation         ErrorCode = "VALIDATION_FAILED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeInternal           ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches two domain errors by code and message so wrapped sentinels
// still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError reports caller-supplied data that failed a required-field or format rule.
func ValidationError(fields map[string]string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// Common domain errors.
var (
	ErrEmployeeNotFound   = NewError(ErrCodeNotFound, "employee not found")
	ErrUsernameNotFound   = NewError(ErrCodeNotFound, "username not found")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "task not found")
	ErrInvalidCredentials = NewError(ErrCodeInvalidCredentials, "invalid credentials")
	ErrWrongPassword      = NewError(ErrCodeInvalidCredentials, "current password is incorrect")
	ErrAccountInactive    = NewError(ErrCodeAccountInactive, "account is inactive, please contact your administrator")
	ErrNotAuthenticated   = NewError(ErrCodeNotAuthenticated, "user not authenticated")
	ErrForbidden          = NewError(ErrCodeForbidden, "forbidden")
	ErrSlotEmpty          = NewError(ErrCodeNotFound, "storage slot is empty")
	ErrIDSpaceExhausted   = NewError(ErrCodeInternal, "employee id space exhausted")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
