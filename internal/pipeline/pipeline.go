// Package pipeline orchestrates one full compile: borrow-check every
// function, simplify its CFG, lower it to LIR, peephole-optimize the LIR
// module, then emit either the WASM (C9) or JS (C10) artifact per
// config.Config.Backend. Grounded on the teacher's internal/buildpipeline
// (build.go/compile.go's per-file stage sequencing and progress reporting),
// generalized from per-file to per-function granularity since this core's
// unit of independent work is a function, not a source file.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nyejames/beanstalk-sub005/internal/borrow"
	"github.com/nyejames/beanstalk-sub005/internal/config"
	"github.com/nyejames/beanstalk-sub005/internal/diag"
	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/jsgen"
	"github.com/nyejames/beanstalk-sub005/internal/lir"
	"github.com/nyejames/beanstalk-sub005/internal/peephole"
	"github.com/nyejames/beanstalk-sub005/internal/trace"
	"github.com/nyejames/beanstalk-sub005/internal/wasmgen"
)

// Result is the outcome of compiling one hir.Module.
type Result struct {
	Diagnostics *diag.Bag
	Wasm        *wasmgen.Artifact
	JS          *jsgen.Artifact
	LIR         *lir.Module
}

// funcName names a function fn<path> from the module's side-table path
// number, or fn<id> when no path is recorded.
func funcName(mod *hir.Module, id ids.FunctionId) string {
	if path, ok := mod.SideTable.FuncPaths[id]; ok {
		return fmt.Sprintf("fn%d", path)
	}
	return fmt.Sprintf("fn%d", id)
}

// Compile runs the full C5-C10 chain over mod. Borrow-checking and CFG
// simplification — the two passes with no cross-function state — run
// concurrently across functions via golang.org/x/sync/errgroup, bounded by
// concurrency (0 means GOMAXPROCS-driven default); LIR lowering, peephole
// optimization and final emission stay whole-module and sequential since
// wasmgen/jsgen need every function name resolved up front. Results are
// collected back into the module's declaration order before any later stage
// runs, so the concurrency here is internal scheduling only — it is never
// an observable reordering of spec.md §5's output.
func Compile(ctx context.Context, mod *hir.Module, hostReg *hostreg.Registry, cfg config.Config, concurrency int, sink trace.Sink) (*Result, error) {
	if hostReg == nil {
		hostReg = hostreg.NewRegistry()
	}
	if sink == nil {
		sink = trace.Nop{}
	}

	diags := diag.NewBag(cfg.MaxDiagnostics)

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	perFuncDiags := make([]*diag.Bag, len(mod.Functions))

	for i := range mod.Functions {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn := &mod.Functions[i]
			name := funcName(mod, fn.ID)

			bcSpan := trace.Start(sink, name, trace.StageBorrowCheck)
			res := borrow.Check(fn, mod.TypeContext)
			bcSpan.Done(nil)
			perFuncDiags[i] = res.Diagnostics

			scSpan := trace.Start(sink, name, trace.StageSimplifyCFG)
			hir.SimplifyCFG(fn)
			scSpan.Done(nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, d := range perFuncDiags {
		diags.Merge(d)
	}
	if diags.HasErrors() {
		return &Result{Diagnostics: diags}, nil
	}

	lowerSpan := trace.Start(sink, "", trace.StageLowerLIR)
	lirMod, lerr := lir.LowerModule(mod)
	if lerr != nil {
		lowerSpan.Done(fmt.Errorf("%s", lerr.Error()))
		diags.Errorf(diag.KindLowering, lerr.Location, "%s", lerr.Message)
		return &Result{Diagnostics: diags}, nil
	}
	lowerSpan.Done(nil)

	peepholeSpan := trace.Start(sink, "", trace.StagePeephole)
	peephole.OptimizeModule(lirMod)
	peepholeSpan.Done(nil)

	names := make(map[ids.FunctionId]string, len(mod.Functions))
	for i := range mod.Functions {
		names[mod.Functions[i].ID] = funcName(mod, mod.Functions[i].ID)
	}

	result := &Result{Diagnostics: diags, LIR: lirMod}

	switch cfg.Backend {
	case config.BackendJS:
		emitSpan := trace.Start(sink, "", trace.StageEmitJS)
		art, jerr := jsgen.EmitModule(mod, hostReg, names, nil, jsgen.Config{
			Pretty:          cfg.Pretty,
			EmitLocations:   cfg.EmitLocations,
			AutoInvokeStart: cfg.AutoInvokeStart,
		})
		if jerr != nil {
			emitSpan.Done(fmt.Errorf("%s", jerr.Error()))
			diags.Errorf(diag.KindLowering, jerr.Location, "%s", jerr.Message)
			return &Result{Diagnostics: diags}, nil
		}
		emitSpan.Done(nil)
		result.JS = art
	default:
		emitSpan := trace.Start(sink, "", trace.StageEmitWasm)
		art, werr := wasmgen.EmitModule(lirMod, hostReg, names, nil)
		if werr != nil {
			emitSpan.Done(fmt.Errorf("%s", werr.Error()))
			diags.Errorf(diag.KindLowering, werr.Location, "%s", werr.Message)
			return &Result{Diagnostics: diags}, nil
		}
		emitSpan.Done(nil)
		result.Wasm = art
	}

	return result, nil
}
