package driver

import (
	"encoding/json"
	"fmt"

	"loom/internal/diag"
	"loom/internal/observ"
	"loom/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func appendTimingDiagnostic(bag *diag.Bag, path string, report observ.Report) {
	if bag == nil {
		return
	}
	payload := timingPayload{Kind: "unit", Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if path != "" {
		msg = fmt.Sprintf("%s, %s", msg, path)
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Location{}, msg).
		WithNote(source.Location{}, string(data))
	bag.Force(entry)
}
