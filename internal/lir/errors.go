package lir

import (
	"fmt"

	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// Error is the structural error type the LIR lowerer returns when it can't
// represent an operation (spec.md §4.4, §7 "Lowering" kind).
type Error struct {
	Message  string
	Location source.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("Lowering: %s (%s)", e.Message, e.Location)
}

func loweringErr(loc source.Span, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Location: loc}
}
