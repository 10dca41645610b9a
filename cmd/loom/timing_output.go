package main

import (
	"fmt"
	"io"
	"time"

	"loom/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	labels := map[buildpipeline.Stage]string{
		buildpipeline.StageLoad:  "loaded",
		buildpipeline.StageLower: "lowered",
		buildpipeline.StageGraph: "graphed",
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s %.1f ms\n", labels[stage], toMillis(timings.Duration(stage))); err != nil {
			panic(err)
		}
	}
	if len(timings) > 1 {
		fmt.Fprintf(out, "total %.1f ms\n", toMillis(timings.Sum(buildpipeline.Stages...)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
