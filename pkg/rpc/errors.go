// Package rpc implements the request/response envelope layer over the tagged
// wire format: request decoding, the method dispatch table, reflective
// dispatch to service implementations, and response building.
package rpc

import (
	"errors"
	"fmt"
)

// Numeric error codes carried in the response envelope. 0 is success, every
// failure is negative. The request-boundary codes abort the whole request;
// service codes come from the service implementations.
const (
	CodeOK = 0

	CodeEmptyPayload     = -100
	CodeParseError       = -101
	CodeMalformedRequest = -102
	CodeUnknownMethod    = -103
	CodeBadParameterType = -104
	CodeEncodeFailure    = -105

	CodeInvalidArgument = -110
	CodeNotFound        = -111
	CodeAlreadyExists   = -112
	CodeInternal        = -120
)

// Error is a structured error carrying a response envelope code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewError creates an Error with the given code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates an Error with a formatted message.
func Errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the envelope code from an error. Errors that do not carry a
// code map to CodeInternal; nil maps to CodeOK.
func CodeOf(err error) int {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
