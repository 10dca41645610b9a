package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// Phase names, in execution order.
const (
	PhaseLoad  = "load"
	PhaseLower = "lower"
	PhaseGraph = "graph"
)

// PhaseEvent describes a timing phase boundary of one file.
type PhaseEvent struct {
	File    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events. Files compile in parallel, so the
// observer must be safe for concurrent use.
type PhaseObserver func(PhaseEvent)
