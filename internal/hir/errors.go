package hir

import (
	"fmt"

	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// ErrorKind enumerates the structural failures the HIR builder can report
// (spec.md §4.1 "Failure mode").
type ErrorKind uint8

const (
	ErrHirTransformation ErrorKind = iota
	ErrUnresolvedLocal
	ErrCallTargetNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnresolvedLocal:
		return "UnresolvedLocal"
	case ErrCallTargetNotFound:
		return "CallTargetNotFound"
	default:
		return "HirTransformation"
	}
}

// Error is the structural error type returned by build_module. No partial
// HIR is ever returned alongside an Error (spec.md §4.1).
type Error struct {
	Kind     ErrorKind
	Message  string
	Location source.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Location)
}

func transformErr(loc source.Span, format string, args ...any) *Error {
	return &Error{Kind: ErrHirTransformation, Message: fmt.Sprintf(format, args...), Location: loc}
}

func unresolvedLocalErr(loc source.Span, name string) *Error {
	return &Error{Kind: ErrUnresolvedLocal, Message: fmt.Sprintf("unresolved local %q", name), Location: loc}
}

func callTargetErr(loc source.Span, path string) *Error {
	return &Error{Kind: ErrCallTargetNotFound, Message: fmt.Sprintf("call target not found: %q", path), Location: loc}
}
