package driver

import (
	"context"
	"fmt"

	"loom/internal/anf"
	"loom/internal/diag"
	"loom/internal/front"
	"loom/internal/observ"
	"loom/internal/source"
	"loom/internal/trace"
)

// Options configures a compilation.
type Options struct {
	// Namespace of local symbols; empty gives every unit a random one.
	Namespace      string
	BaseDir        string
	MaxDiagnostics int
	// Jobs bounds parallel units; <= 0 means GOMAXPROCS.
	Jobs          int
	EnableTimings bool
	// SkipGraph stops after lowering.
	SkipGraph     bool
	PhaseObserver PhaseObserver
}

func (o *Options) notify(ev PhaseEvent) {
	if o != nil && o.PhaseObserver != nil {
		o.PhaseObserver(ev)
	}
}

// Unit is the outcome of compiling one file or snippet.
type Unit struct {
	Path    string
	File    source.FileID
	Lowered *front.Result
	Module  *anf.Module
	Bag     *diag.Bag
	Err     error

	timer *observ.Timer
}

func newUnit(path string, opts *Options) *Unit {
	return &Unit{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics), timer: observ.NewTimer()}
}

// Timing reports the phases measured for this unit.
func (u *Unit) Timing() observ.Report { return u.timer.Report() }

// stage runs fn as one named phase: a pass span, a timer entry and a pair of
// observer events.
func (u *Unit) stage(ctx context.Context, name string, opts *Options, fn func(context.Context) (string, error)) error {
	span, ctx := trace.Start(trace.WithUnit(ctx, u.Path), trace.ScopePass, name)

	opts.notify(PhaseEvent{File: u.Path, Name: name, Status: PhaseStart})
	stop := u.timer.Track(name)
	note, err := fn(ctx)
	elapsed := stop(note)
	span.Fail(err).End(note)
	opts.notify(PhaseEvent{File: u.Path, Name: name, Status: PhaseEnd, Elapsed: elapsed, Err: err})
	return err
}

// fail records err on the unit. Syntax errors keep their code and location.
func (u *Unit) fail(err error) {
	u.Err = err
	diag.ReportError(diag.BagReporter{Bag: u.Bag}, err)
}

func (u *Unit) lower(ctx context.Context, fs *source.FileSet, opts *Options) error {
	return u.stage(ctx, PhaseLower, opts, func(ctx context.Context) (string, error) {
		res, err := front.ParseFile(ctx, fs, u.File, front.Options{Namespace: opts.Namespace})
		if err != nil {
			return "", err
		}
		u.Lowered = res
		return fmt.Sprintf("%d definitions", res.Globals.Len()), nil
	})
}

func (u *Unit) graph(ctx context.Context, opts *Options) error {
	return u.stage(ctx, PhaseGraph, opts, func(context.Context) (string, error) {
		m, err := anf.Convert(u.Lowered.Globals)
		if err != nil {
			return "", fmt.Errorf("graph %s: %w", u.Path, err)
		}
		if err := m.Validate(); err != nil {
			return "", fmt.Errorf("graph %s: %w", u.Path, err)
		}
		u.Module = m
		return fmt.Sprintf("%d nodes", m.NumNodes()), nil
	})
}

// finish runs the phases after loading. Errors end up on the unit.
func (u *Unit) finish(ctx context.Context, fs *source.FileSet, opts *Options) {
	defer func() {
		if opts.EnableTimings {
			appendTimingDiagnostic(u.Bag, u.Path, u.Timing())
		}
	}()
	if err := u.lower(ctx, fs, opts); err != nil {
		u.fail(err)
		return
	}
	if opts.SkipGraph {
		return
	}
	if err := u.graph(ctx, opts); err != nil {
		u.fail(err)
	}
}

// CompileSource compiles the literal text of one function definition.
// lineOffset is the line of origin on which src starts.
func CompileSource(ctx context.Context, origin string, lineOffset uint32, src []byte, opts Options) (*source.FileSet, *Unit, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fs := source.NewFileSetWithBase(opts.BaseDir)
	u := newUnit(origin, &opts)
	err := u.stage(ctx, PhaseLower, &opts, func(ctx context.Context) (string, error) {
		res, err := front.ParseSource(ctx, origin, lineOffset, src, front.Options{Namespace: opts.Namespace, Files: fs})
		if err != nil {
			return "", err
		}
		u.Lowered = res
		u.File = res.Locator.File
		return fmt.Sprintf("%d definitions", res.Globals.Len()), nil
	})
	if err == nil && !opts.SkipGraph {
		err = u.graph(ctx, &opts)
	}
	if err != nil {
		u.fail(err)
	}
	if opts.EnableTimings {
		appendTimingDiagnostic(u.Bag, origin, u.Timing())
	}
	return fs, u, u.Err
}
