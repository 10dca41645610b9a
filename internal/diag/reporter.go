package diag

import "loom/internal/source"

// Reporter — минимальный контракт получения диагностик от фаз.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Location, msg string, notes []Note)
}

// ReportError forwards err to r. Syntax errors keep their code and location;
// anything else is reported as UnknownCode without a position.
func ReportError(r Reporter, err error) {
	if r == nil || err == nil {
		return
	}
	if se, ok := AsSyntaxError(err); ok {
		d := se.Diagnostic()
		r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		return
	}
	r.Report(UnknownCode, SevError, source.Location{}, err.Error(), nil)
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Location, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, source.Location, string, []Note) {}
