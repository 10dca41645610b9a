// Package observ measures the stages of a compilation.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Timer collects named laps in the order they were started.
type Timer struct {
	laps  []lap
	clock func() time.Time
}

type lap struct {
	name    string
	started time.Time
	took    time.Duration
	note    string
}

// NewTimer returns a Timer on the wall clock.
func NewTimer() *Timer { return &Timer{clock: time.Now} }

// Track starts a lap called name. The returned stop func closes it, attaches
// note and reports the elapsed time; calling it twice keeps the first result.
func (t *Timer) Track(name string) (stop func(note string) time.Duration) {
	t.laps = append(t.laps, lap{name: name, started: t.clock(), took: -1})
	i := len(t.laps) - 1
	return func(note string) time.Duration {
		l := &t.laps[i]
		if l.took < 0 {
			l.took = t.clock().Sub(l.started)
			l.note = note
		}
		return l.took
	}
}

// PhaseReport is one lap in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is a serialisable view of a Timer. Unfinished laps are left out.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the finished laps.
func (t *Timer) Report() Report {
	var r Report
	for _, l := range t.laps {
		if l.took < 0 {
			continue
		}
		ms := millis(l.took)
		r.Phases = append(r.Phases, PhaseReport{Name: l.name, DurationMS: ms, Note: l.note})
		r.TotalMS += ms
	}
	return r
}

// Merge adds reports together lap by lap. The first report to mention a name
// fixes its position; notes do not survive.
func Merge(reports ...Report) Report {
	var out Report
	pos := map[string]int{}
	for _, r := range reports {
		out.TotalMS += r.TotalMS
		for _, p := range r.Phases {
			i, seen := pos[p.Name]
			if !seen {
				i = len(out.Phases)
				pos[p.Name] = i
				out.Phases = append(out.Phases, PhaseReport{Name: p.Name})
			}
			out.Phases[i].DurationMS += p.DurationMS
		}
	}
	return out
}

// String renders the report as an aligned table ending in a total row.
func (r Report) String() string {
	var sb strings.Builder
	row := func(name string, ms float64, note string) {
		fmt.Fprintf(&sb, "%-12s %8.2f ms", name, ms)
		if note != "" {
			fmt.Fprintf(&sb, "  (%s)", note)
		}
		sb.WriteByte('\n')
	}
	for _, p := range r.Phases {
		row(p.Name, p.DurationMS, p.Note)
	}
	row("total", r.TotalMS, "")
	return sb.String()
}

func millis(d time.Duration) float64 { return float64(d.Microseconds()) / 1e3 }
