// Package ui renders interactive terminal views for the CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"jitscript/internal/compiler"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	moduleStyle  = lipgloss.NewStyle().Bold(true)
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// moduleRow groups the methods of one class; statuses are keyed by method
// name without the class prefix.
type moduleRow struct {
	name    string
	methods []string
	status  map[string]compiler.Status
}

type progressModel struct {
	title   string
	events  <-chan compiler.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []*moduleRow
	byName  map[string]*moduleRow
	width   int
	done    bool
}

type eventMsg compiler.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model with one line per module,
// showing how many of its methods finished and which are compiling or
// failed. The model quits when events is closed.
func NewProgressModel(title string, events <-chan compiler.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		byName:  make(map[string]*moduleRow),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(compiler.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev compiler.Event) tea.Cmd {
	module, method := splitQualName(ev.Method)
	row := m.byName[module]
	if row == nil {
		row = &moduleRow{name: module, status: make(map[string]compiler.Status)}
		m.byName[module] = row
		m.rows = append(m.rows, row)
	}
	if _, seen := row.status[method]; !seen {
		row.methods = append(row.methods, method)
	}
	row.status[method] = ev.Status

	finished, _, total := m.counts()
	return m.bar.SetPercent(float64(finished) / float64(total))
}

// splitQualName cuts "Encoder.forward" at the last dot.
func splitQualName(qual string) (module, method string) {
	if i := strings.LastIndexByte(qual, '.'); i >= 0 {
		return qual[:i], qual[i+1:]
	}
	return "", qual
}

func (m *progressModel) counts() (finished, failed, total int) {
	for _, row := range m.rows {
		for _, st := range row.status {
			total++
			switch st {
			case compiler.StatusDone:
				finished++
			case compiler.StatusFailed:
				finished++
				failed++
			}
		}
	}
	return finished, failed, total
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	finished, failed, total := m.counts()
	header := fmt.Sprintf("%s (%d/%d", m.title, finished, total)
	if failed > 0 {
		header += fmt.Sprintf(", %d failed", failed)
	}
	header += ")"
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	nameWidth := 0
	for _, row := range m.rows {
		nameWidth = max(nameWidth, runewidth.StringWidth(row.name))
	}
	nameWidth = min(nameWidth, m.width/3)

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	for _, row := range m.rows {
		b.WriteString("  ")
		b.WriteString(moduleStyle.Render(runewidth.FillRight(truncate(row.name, nameWidth), nameWidth)))
		b.WriteString(" ")
		b.WriteString(m.rowDetail(row, m.width-nameWidth-3))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

// rowDetail renders "3/4 done  compiling: forward  error: run" in at most
// width cells.
func (m *progressModel) rowDetail(row *moduleRow, width int) string {
	var working, failed []string
	done := 0
	for _, name := range row.methods {
		switch row.status[name] {
		case compiler.StatusWorking:
			working = append(working, name)
		case compiler.StatusFailed:
			failed = append(failed, name)
		case compiler.StatusDone:
			done++
		}
	}
	count := fmt.Sprintf("%d/%d", done, len(row.methods))
	parts := []string{doneStyle.Render(count)}
	used := len(count)
	add := func(label string, names []string, st lipgloss.Style) {
		if len(names) == 0 || used+6 > width {
			return
		}
		text := truncate(label+": "+strings.Join(names, ", "), width-used-2)
		used += runewidth.StringWidth(text) + 2
		parts = append(parts, st.Render(text))
	}
	add(compiler.StatusWorking.String(), working, workingStyle)
	add(compiler.StatusFailed.String(), failed, failedStyle)
	return strings.Join(parts, "  ")
}

// truncate cuts value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
