// Package ui implements the CLI's build-progress view (SPEC_FULL.md §10
// "Progress/CLI UX"), ported from the teacher's internal/ui/progress.go:
// a Bubble Tea model driving a spinner and a gradient progress bar from a
// stream of pipeline events, trimmed to the per-function granularity this
// core's trace.Event reports at.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/nyejames/beanstalk-sub005/internal/trace"
)

type funcItem struct {
	name   string
	stage  trace.Stage
	status trace.Status
}

type eventMsg trace.Event
type doneMsg struct{}

// Model is a Bubble Tea model rendering per-function compile progress.
type Model struct {
	title   string
	events  <-chan trace.Event
	spinner spinner.Model
	prog    progress.Model
	items   []funcItem
	index   map[string]int
	done    bool
	width   int
}

// NewModel returns a progress model for the given function set, fed by
// events. funcs establishes display order; items not yet seen render queued.
func NewModel(title string, funcs []string, events <-chan trace.Event) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 60

	items := make([]funcItem, 0, len(funcs))
	index := make(map[string]int, len(funcs))
	for i, name := range funcs {
		items = append(items, funcItem{name: name})
		index[name] = i
	}
	return &Model{title: title, events: events, spinner: sp, prog: prog, items: items, index: index, width: 80}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(e)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.apply(trace.Event(msg))
		return m, m.listen()
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
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) apply(e trace.Event) {
	if e.Func == "" {
		return
	}
	idx, ok := m.index[e.Func]
	if !ok {
		idx = len(m.items)
		m.items = append(m.items, funcItem{name: e.Func})
		m.index[e.Func] = idx
	}
	m.items[idx].stage = e.Stage
	m.items[idx].status = e.Status
}

func (m *Model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.title)

	done := 0
	for _, it := range m.items {
		if it.status == trace.StatusDone {
			done++
		}
	}
	var ratio float64
	if len(m.items) > 0 {
		ratio = float64(done) / float64(len(m.items))
	}
	b.WriteString(m.prog.ViewAs(ratio))
	b.WriteByte('\n')

	for _, it := range m.items {
		label := fmt.Sprintf("%-24s %-16s %s", it.name, it.stage, it.status)
		pad := m.width - runewidth.StringWidth(label)
		if pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		switch it.status {
		case trace.StatusError:
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(label))
		case trace.StatusDone:
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render(label))
		default:
			b.WriteString(label)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
