package buildpipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestCompileEmitsProgressAndTimings(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.py")
	bad := filepath.Join(dir, "b.py")
	if err := os.WriteFile(good, []byte("def f(x):\n    return x + 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("def g(x):\n    return x\n    y = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var (
		mu     sync.Mutex
		events []Event
	)
	sink := FuncSink(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	res, err := Compile(context.Background(), &CompileRequest{TargetPath: dir, Namespace: "t", Progress: sink})
	if err == nil {
		t.Fatalf("expected the statement-after-return error")
	}
	if len(res.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(res.Units))
	}

	final := map[string]Status{}
	queued := 0
	for _, ev := range events {
		if ev.Status == StatusQueued {
			queued++
		}
		final[ev.File] = ev.Status
	}
	if queued != 2 {
		t.Fatalf("queued events = %d", queued)
	}
	if final[good] != StatusDone || final[bad] != StatusError {
		t.Fatalf("final statuses = %v", final)
	}
	for _, stage := range Stages {
		if !res.Timings.Has(stage) {
			t.Fatalf("no timing for %s", stage)
		}
	}
	if res.Timings.Sum(Stages...) < res.Timings.Duration(StageLower) {
		t.Fatalf("sum smaller than a part")
	}
}

func TestResolveFiles(t *testing.T) {
	if _, err := ResolveFiles(&CompileRequest{}); err == nil {
		t.Fatalf("expected missing target error")
	}
	if _, err := ResolveFiles(&CompileRequest{TargetPath: t.TempDir()}); err == nil {
		t.Fatalf("expected empty directory error")
	}
	files, err := ResolveFiles(&CompileRequest{TargetPath: "ignored", Files: []string{"x.py"}})
	if err != nil || len(files) != 1 {
		t.Fatalf("explicit files not used: %v %v", files, err)
	}
}
