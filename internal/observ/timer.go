package observ

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Entry is one timed step: a pipeline phase or a single method compilation.
type Entry struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects pipeline phases and per-method compile times. Methods
// compiled in parallel record into the same timer. A nil *Timer is valid and
// records nothing.
type Timer struct {
	mu      sync.Mutex
	phases  []Entry
	methods []Entry
}

func NewTimer() *Timer { return &Timer{phases: make([]Entry, 0, 8)} }

// Handle identifies an entry opened by Begin or BeginMethod.
type Handle struct {
	method bool
	idx    int
}

// Begin starts a pipeline phase.
func (t *Timer) Begin(name string) Handle { return t.open(false, name) }

// BeginMethod starts timing one method body.
func (t *Timer) BeginMethod(qualName string) Handle { return t.open(true, qualName) }

func (t *Timer) open(method bool, name string) Handle {
	if t == nil {
		return Handle{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	list := t.list(method)
	*list = append(*list, Entry{Name: name, Start: time.Now()})
	return Handle{method: method, idx: len(*list) - 1}
}

func (t *Timer) list(method bool) *[]Entry {
	if method {
		return &t.methods
	}
	return &t.phases
}

// End closes the entry opened by Begin or BeginMethod.
func (t *Timer) End(h Handle, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	list := *t.list(h.method)
	if h.idx >= len(list) {
		return
	}
	list[h.idx].Dur = time.Since(list[h.idx].Start)
	list[h.idx].Note = note
}

// Measure times fn as one phase; a failing fn is noted as "failed".
func (t *Timer) Measure(name string, fn func() error) error {
	h := t.Begin(name)
	err := fn()
	note := ""
	if err != nil {
		note = "failed"
	}
	t.End(h, note)
	return err
}

// Report — снимок таймера. Total sums phases only; method times overlap
// and are already inside the compile phase.
type Report struct {
	Total   time.Duration
	Phases  []Entry
	Methods []Entry // slowest first
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	r := Report{
		Phases:  slices.Clone(t.phases),
		Methods: slices.Clone(t.methods),
	}
	for _, p := range r.Phases {
		r.Total += p.Dur
	}
	slices.SortStableFunc(r.Methods, func(a, b Entry) int { return cmp.Compare(b.Dur, a.Dur) })
	return r
}

// SlowestShown limits the method rows printed by Summary.
const SlowestShown = 5

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	r := t.Report()
	methods := r.Methods[:min(len(r.Methods), SlowestShown)]
	width := len("total")
	for _, e := range slices.Concat(r.Phases, methods) {
		width = max(width, len(e.Name))
	}
	var sb strings.Builder
	row := func(e Entry) {
		fmt.Fprintf(&sb, "  %-*s %8.2f ms", width, e.Name, millis(e.Dur))
		if e.Note != "" {
			sb.WriteString("  // " + e.Note)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		row(p)
	}
	row(Entry{Name: "total", Dur: r.Total})
	if len(methods) > 0 {
		fmt.Fprintf(&sb, "slowest methods (%d of %d):\n", len(methods), len(r.Methods))
		for _, m := range methods {
			row(m)
		}
	}
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
