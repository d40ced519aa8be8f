package schema

import (
	"errors"
	"strings"
)

// ErrorCode is a machine-readable schema error code.
type ErrorCode string

const (
	CodeDuplicateType          ErrorCode = "duplicate_type"
	CodeUnknownType            ErrorCode = "unknown_type"
	CodeArityMismatch          ErrorCode = "arity_mismatch"
	CodeUnusedGenericParameter ErrorCode = "unused_generic_parameter"
	CodeIllegalSelfReference   ErrorCode = "illegal_self_reference"
	CodeDuplicateFunctionName  ErrorCode = "duplicate_function_name"
)

// Error is a single schema problem. TypeName and Function identify the
// offending item when applicable.
type Error struct {
	Code     ErrorCode
	TypeName TypeName
	Function string
	Message  string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Function != "" {
		b.WriteString(": function ")
		b.WriteString(e.Function)
	}
	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(string(e.TypeName))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is matches errors by code, so errors.Is(err, &Error{Code: c}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && (t.TypeName == "" || t.TypeName == e.TypeName)
}

// HasCode reports whether err is or wraps a schema error with code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range u.Unwrap() {
			if HasCode(e, code) {
				return true
			}
		}
		return false
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
