package buildpipeline

import (
	"time"

	"loom/internal/driver"
)

// Stage is a driver phase as seen by progress consumers.
type Stage string

const (
	StageLoad  Stage = driver.PhaseLoad
	StageLower Stage = driver.PhaseLower
	StageGraph Stage = driver.PhaseGraph
)

// Stages is the order a unit walks through.
var Stages = []Stage{StageLoad, StageLower, StageGraph}

// Status is where a file stands inside a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event is one progress report about File. Elapsed is set when a stage fails.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings sums stage durations over every file of a compile.
type Timings map[Stage]time.Duration

// Add accumulates dur for stage, allocating the map on first use.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if *t == nil {
		*t = make(Timings, len(Stages))
	}
	(*t)[stage] += dur
}

// Has reports whether stage ran at least once.
func (t Timings) Has(stage Stage) bool {
	_, ok := t[stage]
	return ok
}

func (t Timings) Duration(stage Stage) time.Duration { return t[stage] }

// Sum adds up the listed stages.
func (t Timings) Sum(stages ...Stage) (total time.Duration) {
	for _, stage := range stages {
		total += t[stage]
	}
	return total
}
