package jsgen

import (
	"fmt"

	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// Error is a JS emission failure, mirroring wasmgen.Error's shape so both
// backends report through the same ErrorReport structure (spec.md §6).
type Error struct {
	Message  string
	Location source.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("Js: %s (%s)", e.Message, e.Location)
}

func errf(span source.Span, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Location: span}
}
