package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	h := tm.Begin("decode")
	tm.End(h, "1 module")
	if err := tm.Measure("compile", func() error { return errors.New("boom") }); err == nil {
		t.Fatalf("Measure must return fn's error")
	}
	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	if r.Phases[0].Note != "1 module" || r.Phases[1].Note != "failed" {
		t.Fatalf("notes = %+v", r.Phases)
	}
	if s := tm.Summary(); !strings.Contains(s, "decode") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestTimerMethodsSortedAndCapped(t *testing.T) {
	tm := NewTimer()
	for _, name := range []string{"Net.a", "Net.b", "Net.c", "Net.d", "Net.e", "Net.f"} {
		tm.End(tm.BeginMethod(name), "")
	}
	tm.methods[2].Dur = time.Second
	r := tm.Report()
	if len(r.Methods) != 6 || r.Methods[0].Name != "Net.c" {
		t.Fatalf("methods = %+v", r.Methods)
	}
	if r.Total != 0 {
		t.Fatalf("method times must not count toward total, got %v", r.Total)
	}
	s := tm.Summary()
	if !strings.Contains(s, "slowest methods (5 of 6)") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	tm.End(tm.BeginMethod("Net.forward"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer should report nothing")
	}
}
