package ui

import (
	"strings"
	"testing"

	"jitscript/internal/compiler"
)

func TestProgressModelGroupsByModule(t *testing.T) {
	m := NewProgressModel("net.yaml", nil).(*progressModel)
	m.width = 120
	for _, ev := range []compiler.Event{
		{Method: "Net.forward", Status: compiler.StatusQueued},
		{Method: "Net.helper", Status: compiler.StatusQueued},
		{Method: "Head.run", Status: compiler.StatusQueued},
		{Method: "Net.forward", Status: compiler.StatusWorking},
		{Method: "Net.forward", Status: compiler.StatusDone},
		{Method: "Net.helper", Status: compiler.StatusFailed},
		{Method: "Head.run", Status: compiler.StatusWorking},
	} {
		m.Update(eventMsg(ev))
	}

	if len(m.rows) != 2 || m.rows[0].name != "Net" || len(m.rows[0].methods) != 2 {
		t.Fatalf("rows = %+v", m.rows)
	}
	view := m.View()
	for _, want := range []string{"net.yaml (2/3, 1 failed)", "1/2", "error: helper", "compiling: run"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view misses %q:\n%s", want, view)
		}
	}

	m.Update(doneMsg{})
	if !strings.HasPrefix(m.View(), titleStyle.Render("done: net.yaml (2/3, 1 failed)")) {
		t.Fatalf("done header missing:\n%s", m.View())
	}
}

func TestSplitQualName(t *testing.T) {
	if mod, meth := splitQualName("pkg.Encoder.forward"); mod != "pkg.Encoder" || meth != "forward" {
		t.Fatalf("split = %q %q", mod, meth)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Encoder.forward_with_cache", 10); got != "Encoder..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
