package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"loom/internal/buildpipeline"
	"loom/internal/driver"
	"loom/internal/project"
)

const sample = "def f(x):\n    y = x + 1\n    return y\n"

func compileSample(t *testing.T, skipGraph bool) *driver.Unit {
	t.Helper()
	_, unit, err := driver.CompileSource(context.Background(), "sample.py", 1, []byte(sample), driver.Options{
		Namespace: "test",
		SkipGraph: skipGraph,
	})
	require.NoError(t, err)
	return unit
}

func TestEmitSurface(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emitUnit(&buf, compileSample(t, true), project.EmitSurface))
	require.True(t, strings.HasPrefix(buf.String(), "f = "), buf.String())
}

func TestEmitGraphNeedsModule(t *testing.T) {
	var buf bytes.Buffer
	err := emitUnit(&buf, compileSample(t, true), project.EmitGraph)
	require.ErrorContains(t, err, "graph was not built")

	buf.Reset()
	require.NoError(t, emitUnit(&buf, compileSample(t, false), project.EmitGraph))
	require.True(t, strings.HasPrefix(buf.String(), "f(x)"), buf.String())
}

func TestEmitDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emitUnit(&buf, compileSample(t, true), project.EmitDump))
	require.Contains(t, buf.String(), "f = &Lambda{")
}

func TestEmitDeps(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emitUnit(&buf, compileSample(t, true), project.EmitDeps))
	require.Equal(t, "order: f\nbatches: [f]\n", buf.String())
}

func TestEmitUnitsHeaders(t *testing.T) {
	a := compileSample(t, true)
	a.Path = "a.py"
	b := compileSample(t, true)
	b.Path = "b.py"
	broken := &driver.Unit{Path: "c.py", Err: context.Canceled}

	var buf bytes.Buffer
	require.NoError(t, emitUnits(&buf, []*driver.Unit{a, broken, b}, project.EmitSurface))
	out := buf.String()
	require.Contains(t, out, "# a.py\n")
	require.Contains(t, out, "# b.py\n")
	require.NotContains(t, out, "c.py")
}

func TestReadUIMode(t *testing.T) {
	mode, err := readUIMode(" ON ")
	require.NoError(t, err)
	require.Equal(t, uiModeOn, mode)

	mode, err = readUIMode("")
	require.NoError(t, err)
	require.Equal(t, uiModeAuto, mode)

	_, err = readUIMode("sometimes")
	require.Error(t, err)

	require.False(t, shouldUseTUI(uiModeOff, 10))
	require.True(t, shouldUseTUI(uiModeOn, 1))
}

func TestPrintStageTimings(t *testing.T) {
	var timings buildpipeline.Timings
	timings.Add(buildpipeline.StageLower, 1500*time.Microsecond)
	timings.Add(buildpipeline.StageLoad, 500*time.Microsecond)

	var buf bytes.Buffer
	printStageTimings(&buf, timings)
	require.Equal(t, "loaded 0.5 ms\nlowered 1.5 ms\ntotal 2.0 ms\n", buf.String())

	buf.Reset()
	var single buildpipeline.Timings
	single.Add(buildpipeline.StageLoad, time.Millisecond)
	printStageTimings(&buf, single)
	require.Equal(t, "loaded 1.0 ms\n", buf.String())
}
