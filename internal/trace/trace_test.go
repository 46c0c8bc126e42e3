package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "ERROR", "phase", "Detail", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelAllows(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFunction, false},
		{LevelDetail, ScopeFunction, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
		{LevelOff, ScopeDriver, false},
	}
	for _, tt := range tests {
		if got := tt.level.Allows(tt.scope); got != tt.want {
			t.Fatalf("%s.Allows(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	ctx, outer := Start(ctx, ScopePass, "compile")
	_, inner := Start(ctx, ScopeFunction, "Net.forward")
	inner.WithExtra("nodes", "3").End("")
	outer.End("ok")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[1].ParentID != outer.ID() {
		t.Fatalf("inner parent = %d, want %d", events[1].ParentID, outer.ID())
	}
	if events[2].Extra["nodes"] != "3" {
		t.Fatalf("extra lost: %v", events[2].Extra)
	}
}

func TestDisabledSpanIsNoop(t *testing.T) {
	ctx := context.Background()
	ctx2, s := Start(ctx, ScopeNode, "attr")
	if ctx2 != ctx {
		t.Fatalf("disabled span must not extend the context")
	}
	if s.End("x") != 0 || s.ID() != 0 {
		t.Fatalf("disabled span should be inert")
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), st)
	_, s := Start(ctx, ScopePass, "decode")
	s.End("2 methods")
	_, hidden := Start(ctx, ScopeNode, "call")
	hidden.End("")
	out := buf.String()
	if !strings.Contains(out, "→ decode") || !strings.Contains(out, "← decode (2 methods)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "call") {
		t.Fatalf("node scope should be filtered at phase level:\n%s", out)
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeNode, Name: name})
	}
	got := r.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestErrorLevelFeedsRingOnly(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(8, LevelError)
	multi := &MultiTracer{level: LevelError, stream: NewStreamTracer(&buf, LevelError, FormatText), ring: ring}
	ctx := WithTracer(context.Background(), multi)
	if !Active(ctx, ScopeNode) {
		t.Fatalf("error level must keep node events for the ring")
	}
	_, s := Start(ctx, ScopeNode, "sugar.call")
	s.End("")
	if buf.Len() != 0 {
		t.Fatalf("stream must stay silent at error level:\n%s", buf.String())
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[1].Kind != KindSpanEnd {
		t.Fatalf("ring = %+v", got)
	}
}

func TestNDJSONCarriesDuration(t *testing.T) {
	line := FormatEvent(&Event{Kind: KindSpanEnd, Scope: ScopeFunction, Name: "compile:Net.forward", Dur: 1500 * time.Microsecond}, FormatNDJSON)
	if !strings.Contains(string(line), `"dur_us":1500`) || !strings.Contains(string(line), `"kind":"end"`) {
		t.Fatalf("unexpected line %s", line)
	}
}
