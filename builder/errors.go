package builder

import (
	"strconv"
	"strings"

	"github.com/broady/shapegen/schema"
)

// BuildErrors is the complete batch of problems found by Build.
type BuildErrors []*schema.Error

func (e BuildErrors) Error() string {
	switch len(e) {
	case 0:
		return "no errors"
	case 1:
		return e[0].Error()
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(e)))
	b.WriteString(" schema errors:")
	for _, err := range e {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e BuildErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, err := range e {
		out[i] = err
	}
	return out
}

// Codes returns the error codes in report order.
func (e BuildErrors) Codes() []schema.ErrorCode {
	out := make([]schema.ErrorCode, len(e))
	for i, err := range e {
		out[i] = err.Code
	}
	return out
}
