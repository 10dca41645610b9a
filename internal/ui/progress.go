// Package ui renders compile progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"loom/internal/buildpipeline"
)

type mark uint8

const (
	markPending mark = iota
	markRunning
	markDone
	markFailed
)

var (
	markGlyphs = [...]string{markPending: "·", markRunning: "•", markDone: "✓", markFailed: "✗"}
	markStyles = [...]lipgloss.Style{
		markPending: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		markRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		markDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		markFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// fileRow tracks one file through buildpipeline.Stages.
type fileRow struct {
	path     string
	marks    []mark
	finished bool
	failed   bool
	elapsed  time.Duration
	errLine  string
}

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	prog    progress.Model
	rows    []fileRow
	index   map[string]int
	width   int
	failed  int
	done    bool
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model fed by events; it quits when
// the channel is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = markStyles[markRunning]

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	rows := make([]fileRow, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		rows[i] = fileRow{path: file, marks: make([]mark, len(buildpipeline.Stages))}
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		rows:    rows,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(buildpipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
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
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func stageIndex(stage buildpipeline.Stage) int {
	for i, s := range buildpipeline.Stages {
		if s == stage {
			return i
		}
	}
	return -1
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[idx]
	// a failed file gets a second error event when the pipeline wraps up
	if row.failed {
		return nil
	}
	stage := stageIndex(ev.Stage)
	row.elapsed += ev.Elapsed

	switch ev.Status {
	case buildpipeline.StatusWorking:
		row.settle()
		if stage >= 0 {
			row.marks[stage] = markRunning
		}
	case buildpipeline.StatusError:
		row.failed, row.finished = true, true
		m.failed++
		if stage >= 0 {
			row.marks[stage] = markFailed
		}
		if ev.Err != nil {
			row.errLine, _, _ = strings.Cut(ev.Err.Error(), "\n")
		}
	case buildpipeline.StatusDone:
		row.settle()
		row.finished = true
	}
	return m.prog.SetPercent(m.percent())
}

// settle marks running stages as done.
func (r *fileRow) settle() {
	for i, mk := range r.marks {
		if mk == markRunning {
			r.marks[i] = markDone
		}
	}
}

// percent counts finished files as whole and running ones by stage.
func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	total := 0.0
	for _, row := range m.rows {
		if row.finished {
			total++
			continue
		}
		part := 0.0
		for _, mk := range row.marks {
			switch mk {
			case markDone:
				part++
			case markRunning:
				part += 0.5
			}
		}
		total += part / float64(len(row.marks))
	}
	return total / float64(len(m.rows))
}

func (m *progressModel) finished() int {
	n := 0
	for _, row := range m.rows {
		if row.finished {
			n++
		}
	}
	return n
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := fmt.Sprintf("%s  %d/%d files", m.title, m.finished(), len(m.rows))
	if m.failed > 0 {
		header = fmt.Sprintf("%s, %d failed", header, m.failed)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-len(buildpipeline.Stages)-16, 20)
	for _, row := range m.rows {
		b.WriteString("  ")
		for _, mk := range row.marks {
			b.WriteString(markStyles[mk].Render(markGlyphs[mk]))
		}
		elapsed := ""
		if row.finished {
			elapsed = fmt.Sprintf("%.1fms", float64(row.elapsed)/float64(time.Millisecond))
		}
		fmt.Fprintf(&b, " %9s  %s\n", elapsed, truncate(row.path, nameWidth))
		if row.errLine != "" {
			b.WriteString("      " + errStyle.Render(truncate(row.errLine, nameWidth)) + "\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
