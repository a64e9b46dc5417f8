package wasmgen

import (
	"fmt"

	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// Error is a structural emission failure (spec.md §4.6 step 4: "if any
// check fails, convert to a user-facing CompilerError with the offending
// index or section name"). Most failures here have no single source
// location — they are whole-module consistency problems the lowerer
// should have already made impossible — so Location is usually the
// default span.
type Error struct {
	Message  string
	Location source.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("Wasm: %s (%s)", e.Message, e.Location)
}

func errf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Location: source.Default()}
}
