package observ

import (
	"strings"
	"testing"
	"time"
)

func steppingClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerLaps(t *testing.T) {
	tm := NewTimer()
	tm.clock = steppingClock(2 * time.Millisecond)

	stopLoad := tm.Track("load")
	if d := stopLoad(""); d != 2*time.Millisecond {
		t.Fatalf("load took %v", d)
	}
	if d := stopLoad("again"); d != 2*time.Millisecond {
		t.Fatalf("second stop changed the lap: %v", d)
	}
	stopLower := tm.Track("lower")
	tm.Track("graph") // never stopped
	stopLower("2 helpers")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Note != "" || r.Phases[1].Note != "2 helpers" {
		t.Fatalf("unexpected report %+v", r)
	}
	s := r.String()
	if !strings.Contains(s, "(2 helpers)") || !strings.HasPrefix(strings.Split(s, "\n")[2], "total") {
		t.Fatalf("unexpected table:\n%s", s)
	}
}

func TestMergeSumsByName(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "load", DurationMS: 1}, {Name: "lower", DurationMS: 2}}}
	b := Report{TotalMS: 5, Phases: []PhaseReport{{Name: "lower", DurationMS: 4, Note: "x"}, {Name: "graph", DurationMS: 1}}}
	m := Merge(a, b)
	if m.TotalMS != 8 {
		t.Fatalf("total = %v", m.TotalMS)
	}
	want := []PhaseReport{{Name: "load", DurationMS: 1}, {Name: "lower", DurationMS: 6}, {Name: "graph", DurationMS: 1}}
	if len(m.Phases) != len(want) {
		t.Fatalf("phases = %+v", m.Phases)
	}
	for i := range want {
		if m.Phases[i] != want[i] {
			t.Fatalf("phase %d = %+v, want %+v", i, m.Phases[i], want[i])
		}
	}
}
