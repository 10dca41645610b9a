package trace

import "context"

type ctxKey struct{}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx; nil attaches Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext is the position in the span tree that new events hang from.
type SpanContext struct {
	SpanID uint64
	Unit   string
	Depth  int
}

type spanCtxKey struct{}

// CurrentSpan returns the span context of ctx, zero at the root.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanCtxKey{}).(SpanContext)
	return sc
}

// WithSpanContext attaches sc to ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// WithUnit tags every event started below ctx with the given source path.
func WithUnit(ctx context.Context, unit string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Unit = unit
	return WithSpanContext(ctx, sc)
}

// Start begins a span below the current one of ctx and returns a context in
// which the new span is current.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	span := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx))
	if !span.live() {
		return span, ctx
	}
	return span, WithSpanContext(ctx, span.Context())
}
