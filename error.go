package sitelinks

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EDISALLOWED = "disallowed"
	EDISCOVERY  = "discovery_failure"
	EFETCH      = "fetch"
	EINTERNAL   = "internal"
	EINVALID    = "invalid"
	EPARSE      = "parse"
	ERENDER     = "render"
)

// Error represents an application-specific error. Per-item codes (EFETCH,
// EPARSE, ERENDER) are recovered by the caller; EDISALLOWED, EDISCOVERY and
// EINVALID end a discovery run.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("sitelinks error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
