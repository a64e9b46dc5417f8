// Package diag implements the error taxonomy and collection policy of
// spec.md §7: diagnostics are collected, not thrown on first hit, and a
// module containing any error produces no artifact. Adapted from the
// teacher's internal/diag (Bag/Diagnostic/Severity), trimmed of the
// fix-it/LSP machinery this core has no use for.
package diag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"github.com/nyejames/beanstalk-sub005/internal/source"
)

// Severity ranks a diagnostic's importance.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return "unknown"
	}
}

// Kind is the error taxonomy of spec.md §7.
type Kind uint8

const (
	KindHirTransformation Kind = iota
	KindUnresolvedLocal
	KindCallTargetNotFound
	KindBorrowCheck
	KindLowering
	KindValidation
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindHirTransformation:
		return "HirTransformation"
	case KindUnresolvedLocal:
		return "UnresolvedLocal"
	case KindCallTargetNotFound:
		return "CallTargetNotFound"
	case KindBorrowCheck:
		return "BorrowCheck"
	case KindLowering:
		return "Lowering"
	case KindValidation:
		return "Validation"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Metadata is a structured key/value payload for tooling (spec.md §6
// ErrorReport.errors[].metadata).
type Metadata map[string]string

// Diagnostic is one compiler-produced error or warning.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Location source.Span // source.Default() when not tied to a point
	Metadata Metadata
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", d.Severity, d.Kind, d.Message, d.Location)
}

// Bag collects diagnostics across passes and across functions, honoring the
// "batch, don't fail fast" propagation policy of spec.md §7.
type Bag struct {
	items []*Diagnostic
	limit uint32
}

// NewBag creates a Bag capped at limit diagnostics (0 means unbounded).
func NewBag(limit int) *Bag {
	l, err := safecast.Conv[uint32](limit)
	if err != nil {
		panic(fmt.Errorf("diag: bag limit overflow: %w", err))
	}
	return &Bag{limit: l}
}

// Add appends d, returning false if the bag's limit was already reached.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil {
		return false
	}
	if b.limit != 0 && uint32(len(b.items)) >= b.limit {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Errorf is a convenience constructor + Add in one call.
func (b *Bag) Errorf(kind Kind, loc source.Span, format string, args ...any) {
	b.Add(&Diagnostic{Severity: SevError, Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any collected diagnostic is at SevError.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int { return len(b.items) }

// Items returns the collected diagnostics. Callers must not mutate the
// returned slice in place.
func (b *Bag) Items() []*Diagnostic { return b.items }

// Merge appends other's diagnostics into b.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, span start, span end, severity
// (descending) and kind, for deterministic, testable output (spec.md §7
// "user-visible behavior").
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Location.File != dj.Location.File {
			return di.Location.File < dj.Location.File
		}
		if di.Location.Start != dj.Location.Start {
			if di.Location.Start.Line != dj.Location.Start.Line {
				return di.Location.Start.Line < dj.Location.Start.Line
			}
			return di.Location.Start.Column < dj.Location.Start.Column
		}
		if di.Location.End != dj.Location.End {
			if di.Location.End.Line != dj.Location.End.Line {
				return di.Location.End.Line < dj.Location.End.Line
			}
			return di.Location.End.Column < dj.Location.End.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Kind < dj.Kind
	})
}
