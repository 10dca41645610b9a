package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltersScopes(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeUnit) {
		t.Fatalf("phase level must stop at pass scope")
	}
	if !LevelDetail.ShouldEmit(ScopeUnit) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("detail level must stop at unit scope")
	}
	if !LevelDebug.ShouldEmit(ScopeNode) {
		t.Fatalf("debug level must emit node scope")
	}
	if LevelError.ShouldEmit(ScopeDriver) || !LevelError.Accepts(&Event{Scope: ScopeNode, Failed: true}) {
		t.Fatalf("error level must keep failed spans only")
	}
	if LevelOff.Accepts(&Event{Scope: ScopeDriver, Failed: true}) {
		t.Fatalf("off level accepted an event")
	}
}

func TestParseLevel(t *testing.T) {
	for i, name := range []string{"off", "error", "PHASE", " detail ", "debug"} {
		l, err := ParseLevel(name)
		if err != nil || l != Level(i) {
			t.Fatalf("ParseLevel(%q) = %v, %v", name, l, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamTracerWritesNestedSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)

	driver, ctx := Start(ctx, ScopeDriver, "compile")
	ctx = WithUnit(ctx, "a.py")
	pass, ctx := Start(ctx, ScopePass, "lower")
	Point(ctx, ScopeNode, "while", "#while")
	pass.WithExtra("definitions", "2").End("ok")
	driver.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got:\n%s", buf.String())
	}
	wants := []string{
		"] → compile",
		"]   → lower @a.py",
		"]     • while (#while) @a.py",
		"]   ← lower (ok) {definitions=2} @a.py",
		"] ← compile",
	}
	for i, want := range wants {
		if !strings.HasSuffix(lines[i], want) {
			t.Fatalf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
}

func TestErrorLevelKeepsFailedSpans(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	ctx := WithTracer(context.Background(), ring)

	ok, _ := Start(ctx, ScopePass, "load")
	ok.End("")
	bad, _ := Start(WithUnit(ctx, "b.py"), ScopePass, "lower")
	bad.Fail(errors.New("Missing return statement.")).End("")

	snap := ring.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected only the failed end event, got %+v", snap)
	}
	ev := snap[0]
	if ev.Kind != KindSpanEnd || !ev.Failed || ev.Unit != "b.py" || ev.Extra["error"] != "Missing return statement." {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	for _, name := range []string{"a", "b", "c"} {
		Point(WithUnit(ctx, name+".py"), ScopeNode, name, "")
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if got := ring.Unit("c.py"); len(got) != 1 || got[0].Name != "c" {
		t.Fatalf("Unit(c.py) = %+v", got)
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	r1, r2 := NewRingTracer(4, LevelDebug), NewRingTracer(4, LevelDebug)
	m := NewMultiTracer(LevelDebug, r1, r2)
	Point(WithTracer(context.Background(), m), ScopeNode, "x", "")
	if len(r1.Snapshot()) != 1 || len(r2.Snapshot()) != 1 {
		t.Fatalf("event not delivered to every tracer")
	}
	if r, ok := Ring(m); !ok || r != r1 {
		t.Fatalf("Ring did not find the first ring tracer")
	}
}

func TestNDJSONCarriesUnit(t *testing.T) {
	ev := Event{Time: time.Unix(0, 0), Kind: KindPoint, Scope: ScopeNode, Unit: "f.py", Depth: 2, Name: "while"}
	var got map[string]any
	if err := json.Unmarshal(FormatEvent(ev, FormatNDJSON, time.Time{}), &got); err != nil {
		t.Fatal(err)
	}
	if got["unit"] != "f.py" || got["scope"] != "node" || got["depth"] != float64(2) {
		t.Fatalf("unexpected json %v", got)
	}
}

func TestContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()).Enabled() {
		t.Fatalf("expected nop tracer")
	}
	span, ctx := Start(context.Background(), ScopePass, "lower")
	if span.ID() != 0 || CurrentSpan(ctx) != (SpanContext{}) || span.End("") != 0 {
		t.Fatalf("span on nop tracer must be inert")
	}
	ring := NewRingTracer(1, LevelPhase)
	ctx = WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
}

func TestNewSelectsStorage(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*MultiTracer); !ok {
		t.Fatalf("both mode must fan out, got %T", tr)
	}
	if _, err := ParseFormat("chrome"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if ResolveFormat(FormatAuto, "trace.ndjson") != FormatNDJSON || ResolveFormat(FormatAuto, "-") != FormatText {
		t.Fatalf("auto format detection broken")
	}
}
