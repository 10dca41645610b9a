package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"loom/internal/buildpipeline"
	"loom/internal/ui"
)

type compileOutcome struct {
	result buildpipeline.CompileResult
	err    error
}

func runCompileWithUI(ctx context.Context, title string, files []string, req *buildpipeline.CompileRequest) (buildpipeline.CompileResult, error) {
	if req == nil {
		return buildpipeline.CompileResult{}, fmt.Errorf("missing compile request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Files = files
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Compile(ctx, &reqCopy)
		outcomeCh <- compileOutcome{result: res, err: err}
		close(events)
	}()

	// stdout carries the emitted IR, the progress view goes to stderr
	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
