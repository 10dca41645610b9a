package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// Span is one traced operation. The zero value and a nil *Span are inert.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  SpanContext
	scope   Scope
	name    string
	started time.Time
	failed  bool
	extra   map[string]string
}

// Begin starts a span below parent. Below the level's scope limit the span
// still tracks a failure, so LevelError can report it at End.
func Begin(t Tracer, scope Scope, name string, parent SpanContext) *Span {
	if t == nil || !t.Enabled() {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	if t.Level().ShouldEmit(scope) {
		t.Emit(s.event(KindSpanBegin, s.started, ""))
	}
	return s
}

func (s *Span) live() bool { return s != nil && s.tracer != nil }

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent.SpanID,
		Unit:     s.parent.Unit,
		Depth:    s.parent.Depth,
		Name:     s.name,
		Detail:   detail,
		Failed:   s.failed,
		Extra:    s.extra,
	}
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	now := time.Now()
	ev := s.event(KindSpanEnd, now, detail)
	if s.tracer.Level().Accepts(ev) {
		s.tracer.Emit(ev)
	}
	return now.Sub(s.started)
}

// Fail marks the span as failed with err; nil is ignored.
func (s *Span) Fail(err error) *Span {
	if err == nil || !s.live() {
		return s
	}
	s.failed = true
	return s.WithExtra("error", err.Error())
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Context is the span context children of s start from.
func (s *Span) Context() SpanContext {
	if !s.live() {
		return SpanContext{}
	}
	return SpanContext{SpanID: s.id, Unit: s.parent.Unit, Depth: s.parent.Depth + 1}
}

// Point emits an instant event below the current span of ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	parent := CurrentSpan(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		SpanID:   NextSpanID(),
		ParentID: parent.SpanID,
		Unit:     parent.Unit,
		Depth:    parent.Depth,
		Name:     name,
		Detail:   detail,
	})
}
