// Package trace provides the tracing subsystem of the loom front end.
//
// It records pipeline stages, per-unit lowering and generated helpers so that
// slow or surprising compiles can be diagnosed after the fact. Units are
// compiled in parallel, so every event carries the unit (source path) it
// belongs to and its nesting depth below the driver span.
//
// # Usage
//
//	loom lower --trace=- --trace-level=detail fn.py
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when the command ends
//   - MultiTracer: fan-out
//
// # Levels and scopes
//
// LevelError keeps only spans that ended with Fail. LevelPhase emits
// ScopeDriver and ScopePass, LevelDetail adds ScopeUnit, LevelDebug adds
// ScopeNode.
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithUnit(ctx, "pkg/fn.py")
//
//	span, ctx := trace.Start(ctx, trace.ScopePass, "lower")
//	defer span.End("")
package trace
