package common

import "errors"

// Error classes shared by every domain package. Domain sentinels wrap one of
// these so the HTTP layer can map them to a status without knowing the domain.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("unavailable")
	ErrNotReady        = errors.New("not ready")
)

// Error represents a standardized error with code and message
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	err     error
}

// NewError wraps err with a stable error code.
func NewError(err error, code string) *Error {
	return &Error{
		Code:    code,
		Message: err.Error(),
		err:     err,
	}
}

func (e *Error) GetCode() string {
	if e == nil {
		return ""
	}
	return e.Code
}

// IsEmpty checks if the error is empty (no error)
func (e *Error) IsEmpty() bool {
	return e == nil || e.Code == ""
}

// String returns the string representation of the error
func (e *Error) String() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}
