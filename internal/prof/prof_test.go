package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesRequestedProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Mem:   filepath.Join(dir, "mem.pprof"),
		Trace: filepath.Join(dir, "rt.trace"),
	}
	if !opts.Enabled() {
		t.Fatalf("options with paths must be enabled")
	}
	s, err := Start(opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	for _, p := range []string{opts.Mem, opts.Trace} {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("%s not written: %v", p, err)
		}
	}
	if (Options{}).Enabled() {
		t.Fatalf("zero options must be disabled")
	}
	var nilSession *Session
	if err := nilSession.Stop(); err != nil {
		t.Fatalf("nil Stop: %v", err)
	}
}
