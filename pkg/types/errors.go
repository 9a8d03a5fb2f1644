package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an error.
type ErrorCode string

// Bind errors are fatal: a tree that failed to bind must not be evaluated.
const (
	ErrUnknownFunction   ErrorCode = "UnknownFunction"
	ErrArgumentCount     ErrorCode = "ArgumentCount"
	ErrArgumentType      ErrorCode = "ArgumentType"
	ErrLambdaIdentifier  ErrorCode = "LambdaIdentifier"
	ErrInvalidSignature  ErrorCode = "InvalidSignature"
	ErrInvalidDefinition ErrorCode = "InvalidDefinition"
	ErrMalformedTree     ErrorCode = "MalformedTree"
)

// Evaluation errors are returned as values and never panic.
const (
	ErrIndexOutOfRange  ErrorCode = "IndexOutOfRange"
	ErrInvalidPath      ErrorCode = "InvalidPath"
	ErrNotCollection    ErrorCode = "NotCollection"
	ErrNullInstance     ErrorCode = "NullInstance"
	ErrInvalidRange     ErrorCode = "InvalidRange"
	ErrTypeMismatch     ErrorCode = "TypeMismatch"
	ErrInvalidTimestamp ErrorCode = "InvalidTimestamp"
	ErrLoopDetected     ErrorCode = "LoopDetected"
	ErrStackOverflow    ErrorCode = "StackOverflow"
	ErrHostFunction     ErrorCode = "HostFunction"
)

// Error is a structured engine error.
type Error struct {
	Code    ErrorCode
	Message string
	Expr    string // rendering of the offending node, if any
	Err     error
}

// NewError creates a new error.
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithExpr records the offending expression.
func (e *Error) WithExpr(n *Node) *Error {
	e.Expr = n.String()
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Is matches errors by code, so errors.Is(err, &Error{Code: ErrLoopDetected})
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// CodeOf returns the code of err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
