// Package trace implements the per-stage progress/timing tracer of
// SPEC_FULL.md §10 "Logging/tracing": a lightweight phase tracer recording
// pass entry/exit and per-function timings, delivered to a Sink. Grounded on the teacher's internal/trace and
// cmd/surge/timing_output.go, trimmed of the ring-buffer/heartbeat/Chrome-
// trace-format machinery this core has no use for — one writer, one
// encoding, flushed as events arrive.
package trace

import (
	"fmt"
	"io"
	"time"
)

// Stage names one phase of the compile pipeline (spec.md §4's C1-C10 chain).
type Stage string

const (
	StageBorrowCheck Stage = "borrow-check"
	StageSimplifyCFG Stage = "simplify-cfg"
	StageLowerLIR    Stage = "lower-lir"
	StagePeephole    Stage = "peephole"
	StageEmitWasm    Stage = "emit-wasm"
	StageEmitJS      Stage = "emit-js"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusStarted Status = "started"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one function (or the whole module when Func is
// empty), mirroring the teacher's buildpipeline.Event shape generalized from
// per-file to per-function granularity.
type Event struct {
	Func    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events. internal/ui's progress model and
// internal/pipeline's CLI caller are both sinks.
type Sink interface {
	OnEvent(Event)
}

// Nop discards every event; the zero value is ready to use.
type Nop struct{}

func (Nop) OnEvent(Event) {}

// ChanSink forwards every event onto a channel, used to bridge
// internal/pipeline's synchronous stage calls into internal/ui's Bubble Tea
// event loop.
type ChanSink struct {
	ch chan<- Event
}

// NewChanSink wraps ch as a Sink. Sends are non-blocking: a full channel
// drops the event rather than stalling compilation, since progress output is
// best-effort.
func NewChanSink(ch chan<- Event) ChanSink { return ChanSink{ch: ch} }

func (s ChanSink) OnEvent(e Event) {
	select {
	case s.ch <- e:
	default:
	}
}

// TextWriter renders one line per event to W. The CLI does not install it.
type TextWriter struct {
	W io.Writer
}

func (t TextWriter) OnEvent(e Event) {
	if e.Err != nil {
		fmt.Fprintf(t.W, "%-16s %-24s %-8s %v\n", e.Stage, e.Func, e.Status, e.Err)
		return
	}
	fmt.Fprintf(t.W, "%-16s %-24s %-8s %s\n", e.Stage, e.Func, e.Status, e.Elapsed)
}

// Multi fans one event out to several sinks, grounded on the teacher's
// internal/trace/multi.go.
type Multi []Sink

func (m Multi) OnEvent(e Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(e)
		}
	}
}

// Span times one stage for one function: Start reports Started and Done
// reports Done or Error to sink, the same enter/exit bracketing the teacher's internal/trace
// .Span provides.
type Span struct {
	sink  Sink
	fn    string
	stage Stage
	start time.Time
}

// Start begins timing stage for fn and reports StatusStarted immediately.
func Start(sink Sink, fn string, stage Stage) *Span {
	if sink == nil {
		sink = Nop{}
	}
	sink.OnEvent(Event{Func: fn, Stage: stage, Status: StatusStarted})
	return &Span{sink: sink, fn: fn, stage: stage, start: time.Now()}
}

// Done reports StatusDone (or StatusError if err is non-nil) with the
// elapsed duration since Start.
func (s *Span) Done(err error) {
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	s.sink.OnEvent(Event{Func: s.fn, Stage: s.stage, Status: status, Err: err, Elapsed: time.Since(s.start)})
}
