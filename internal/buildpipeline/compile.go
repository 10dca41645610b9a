// Package buildpipeline runs the compilation stages over a set of files and
// reports progress to the CLI.
package buildpipeline

import (
	"context"
	"fmt"
	"maps"
	"os"
	"sync"

	"loom/internal/driver"
)

// CompileRequest configures the shared compilation pipeline.
type CompileRequest struct {
	// TargetPath is a file or a directory of *.py files.
	TargetPath     string
	BaseDir        string
	Namespace      string
	MaxDiagnostics int
	Jobs           int
	EnableTimings  bool
	SkipGraph      bool
	Progress       ProgressSink
	// Files overrides the file list resolved from TargetPath.
	Files []string
}

// CompileResult captures compilation artefacts and stage timings.
type CompileResult struct {
	*driver.Result
	Timings Timings
}

// ResolveFiles expands the request target into the list of files to compile.
func ResolveFiles(req *CompileRequest) ([]string, error) {
	if len(req.Files) > 0 {
		return req.Files, nil
	}
	if req.TargetPath == "" {
		return nil, fmt.Errorf("missing target path")
	}
	st, err := os.Stat(req.TargetPath)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return []string{req.TargetPath}, nil
	}
	files, err := driver.ListSources(req.TargetPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .py files in %s", req.TargetPath)
	}
	return files, nil
}

// Compile runs load, lower and graph over every requested file. Per-file
// failures are returned as one aggregated error next to a usable result.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	files, err := ResolveFiles(req)
	if err != nil {
		return result, err
	}
	emitQueued(req.Progress, files)

	obs := &phaseObserver{sink: req.Progress}
	res, err := driver.CompileFiles(ctx, files, driver.Options{
		Namespace:      req.Namespace,
		BaseDir:        req.BaseDir,
		MaxDiagnostics: req.MaxDiagnostics,
		Jobs:           req.Jobs,
		EnableTimings:  req.EnableTimings,
		SkipGraph:      req.SkipGraph,
		PhaseObserver:  obs.OnPhase,
	})
	result.Result = res
	result.Timings = obs.timings()
	if res != nil {
		for _, u := range res.Units {
			status := StatusDone
			if u.Err != nil {
				status = StatusError
			}
			emit(req.Progress, Event{File: u.Path, Stage: StageGraph, Status: status, Err: u.Err})
		}
	}
	return result, err
}

// phaseObserver turns driver phase boundaries into progress events and
// accumulates stage timings. Called from worker goroutines.
type phaseObserver struct {
	sink ProgressSink
	mu   sync.Mutex
	acc  Timings
}

func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage := Stage(ev.Name)
	if ev.Status == driver.PhaseStart {
		emit(p.sink, Event{File: ev.File, Stage: stage, Status: StatusWorking})
		return
	}
	p.mu.Lock()
	p.acc.Add(stage, ev.Elapsed)
	p.mu.Unlock()
	if ev.Err != nil {
		emit(p.sink, Event{File: ev.File, Stage: stage, Status: StatusError, Err: ev.Err, Elapsed: ev.Elapsed})
	}
}

func (p *phaseObserver) timings() Timings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.acc)
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

func emitQueued(sink ProgressSink, files []string) {
	for _, f := range files {
		emit(sink, Event{File: f, Status: StatusQueued})
	}
}
