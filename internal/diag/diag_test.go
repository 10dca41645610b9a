package diag

import (
	"errors"
	"fmt"
	"testing"

	"loom/internal/source"
)

func TestSyntaxErrorUnwrap(t *testing.T) {
	loc := source.Location{Origin: "f.py", Line: 3, Column: 5}
	base := Errorf(SynMissingReturn, loc, "Missing return statement.")
	wrapped := fmt.Errorf("lower f: %w", base)

	se, ok := AsSyntaxError(wrapped)
	if !ok {
		t.Fatalf("expected wrapped syntax error to be found")
	}
	if se.Code != SynMissingReturn || se.Location != loc {
		t.Fatalf("unexpected error %+v", se)
	}
	if got := base.Error(); got != "f.py:3:5: Missing return statement." {
		t.Fatalf("unexpected message %q", got)
	}
	if _, ok := AsSyntaxError(errors.New("boom")); ok {
		t.Fatalf("plain errors are not syntax errors")
	}
}

func TestCodeID(t *testing.T) {
	if got := SynFreeVariable.ID(); got != "SYN2015" {
		t.Fatalf("unexpected id %q", got)
	}
	if got := Code(9999).ID(); got != "E0000" {
		t.Fatalf("unexpected fallback id %q", got)
	}
	if Code(9999).Title() != UnknownCode.Title() {
		t.Fatalf("unknown codes should share the fallback title")
	}
}

func TestBagLimitSortAndDedup(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}

	ReportError(r, Errorf(SynStmtAfterReturn, source.Location{Origin: "b.py", Line: 2, Column: 1}, "x"))
	ReportError(r, Errorf(SynMissingReturn, source.Location{Origin: "a.py", Line: 9, Column: 1}, "y"))
	ReportError(r, Errorf(SynMissingReturn, source.Location{Origin: "a.py", Line: 9, Column: 1}, "y"))
	if bag.Add(Diagnostic{}) {
		t.Fatalf("bag should refuse items past its limit")
	}

	bag.Sort()
	bag.Dedup()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", len(items))
	}
	if items[0].Primary.Origin != "a.py" {
		t.Fatalf("expected a.py first, got %s", items[0].Primary.Origin)
	}
	if items[0].Severity != SevError {
		t.Fatalf("syntax errors are reported as errors, got %s", items[0].Severity)
	}
	if bag.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", bag.Dropped())
	}
}

func TestBagForceAndMerge(t *testing.T) {
	full := NewBag(1)
	full.Add(New(SevWarning, UnknownCode, source.Location{}, "w"))
	full.Force(New(SevInfo, ObsTimings, source.Location{}, "timings"))
	if full.Len() != 2 || full.Items()[1].Code != ObsTimings {
		t.Fatalf("unexpected bag %+v", full.Items())
	}

	total := NewBag(1)
	total.Merge(full)
	total.Merge(nil)
	if total.Len() != 2 {
		t.Fatalf("merge should raise the limit, got %d items", total.Len())
	}
	if total.Add(New(SevError, UnknownCode, source.Location{}, "e")) {
		t.Fatalf("the raised limit still applies to Add")
	}
}

func TestReportErrorNonSyntax(t *testing.T) {
	bag := NewBag(4)
	ReportError(BagReporter{Bag: bag}, errors.New("disk on fire"))
	if bag.Len() != 1 || bag.Items()[0].Code != UnknownCode {
		t.Fatalf("expected one unknown-code diagnostic, got %+v", bag.Items())
	}
}

func TestDedupIgnoresSpanFile(t *testing.T) {
	at := func(file source.FileID) source.Location {
		return source.Location{Origin: "a.py", Line: 2, Column: 5, Span: source.Span{File: file, Start: 14, End: 15}}
	}
	bag := NewBag(10)
	bag.Add(New(SevError, SynMissingReturn, at(0), "Missing return statement."))
	bag.Add(New(SevError, SynMissingReturn, at(1), "Missing return statement."))
	bag.Add(New(SevInfo, ObsTimings, source.Location{}, "timings (unit): total 1.00 ms, a.py"))
	bag.Add(New(SevInfo, ObsTimings, source.Location{}, "timings (unit): total 2.00 ms, b.py"))
	bag.Dedup()
	if bag.Len() != 3 {
		t.Fatalf("expected one error and both timing notes, got %+v", bag.Items())
	}
}
