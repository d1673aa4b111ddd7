// Package watch runs the interactive watch mode: a live score table over
// the current window's panes with periodic and event-triggered reflows.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/timvw/panefit/internal/events"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/reflow"
)

// strategyCycle is the order the s key steps through.
var strategyCycle = []model.Strategy{
	model.StrategyBalanced,
	model.StrategyImportance,
	model.StrategyEntropy,
	model.StrategyActivity,
	model.StrategyRelated,
}

// messages
type reflowResultMsg struct {
	result *reflow.Result
	err    error
}

type tickMsg struct{}

type paneEventMsg struct {
	event events.Event
}

// TUI runs the interactive watch mode.
type TUI struct {
	Engine *reflow.Engine

	// RefreshInterval of 0 disables the periodic rescan.
	RefreshInterval time.Duration

	// AutoApply applies the calculated layout on every cycle instead of
	// only previewing it.
	AutoApply bool

	// EventCh receives pane-activity events from the collector; nil
	// disables event-triggered rescans.
	EventCh <-chan events.Event

	// Events is the collector's store; panes with a live event are
	// marked in the score table. Optional.
	Events *events.Store

	Theme string
}

type tuiModel struct {
	engine          *reflow.Engine
	ctx             context.Context
	refreshInterval time.Duration
	eventCh         <-chan events.Event
	events          *events.Store
	st              styles
	spin            spinner.Model

	result    *reflow.Result
	cursor    int
	autoApply bool

	width  int
	height int

	scanning  bool
	message   string
	scanCount int
	lastEvent string
}

func (t *TUI) Run(ctx context.Context) error {
	theme := ThemeByName(t.Theme)
	m := &tuiModel{
		engine:          t.Engine,
		ctx:             ctx,
		refreshInterval: t.RefreshInterval,
		eventCh:         t.EventCh,
		events:          t.Events,
		autoApply:       t.AutoApply,
		st:              newStyles(theme),
		spin:            newSpinner(theme),
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *tuiModel) Init() tea.Cmd {
	m.scanning = true
	cmds := []tea.Cmd{m.doReflow(true), m.spin.Tick}
	if cmd := m.waitForEvent(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *tuiModel) scheduleTick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// waitForEvent blocks on the collector channel and turns each received
// event into a message.
func (m *tuiModel) waitForEvent() tea.Cmd {
	ch := m.eventCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return paneEventMsg{event: e}
	}
}

func (m *tuiModel) doReflow(dryRun bool) tea.Cmd {
	engine := m.engine
	ctx := m.ctx
	return func() tea.Msg {
		result, err := engine.Run(ctx, "", dryRun)
		return reflowResultMsg{result: result, err: err}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case reflowResultMsg:
		m.scanning = false
		if msg.err != nil {
			m.message = fmt.Sprintf("reflow error: %v", msg.err)
		} else if msg.result != nil {
			m.result = msg.result
			m.scanCount++
			if m.cursor >= len(m.result.Panes) {
				m.cursor = 0
			}
			switch msg.result.Status {
			case "applied":
				m.message = fmt.Sprintf("applied %d operations", len(msg.result.Operations))
			case "failed":
				m.message = msg.result.Message
			}
		}
		if cmd := m.scheduleTick(); cmd != nil {
			return m, cmd
		}
		return m, nil

	case tickMsg:
		if m.scanning {
			return m, m.scheduleTick()
		}
		m.scanning = true
		return m, m.doReflow(!m.autoApply)

	case paneEventMsg:
		m.lastEvent = fmt.Sprintf("%s on %s", msg.event.Kind, msg.event.Pane)
		cmds := []tea.Cmd{}
		if next := m.waitForEvent(); next != nil {
			cmds = append(cmds, next)
		}
		if !m.scanning {
			m.scanning = true
			cmds = append(cmds, m.doReflow(!m.autoApply))
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.result != nil && m.cursor < len(m.result.Panes)-1 {
			m.cursor++
		}

	case "s":
		// Cycle strategy and recalculate
		m.engine.Strategy = nextStrategy(m.engine.Strategy)
		m.message = fmt.Sprintf("strategy: %s", m.engine.Strategy)
		m.scanning = true
		return m, m.doReflow(true)

	case "a":
		m.autoApply = !m.autoApply
		if m.autoApply {
			m.message = "auto-apply ON"
		} else {
			m.message = "auto-apply OFF"
		}
		return m, nil

	case "enter":
		// Apply the layout now
		m.scanning = true
		m.message = ""
		return m, m.doReflow(false)

	case "r":
		// Recalculate without applying
		m.scanning = true
		m.message = ""
		return m, m.doReflow(true)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.st.title.Render("panefit watch"))
	b.WriteString("  ")
	autoLabel := "a=auto:OFF"
	if m.autoApply {
		autoLabel = "a=auto:ON"
	}
	b.WriteString(m.st.dim.Render(fmt.Sprintf(
		"Enter=apply  r=rescan  s=strategy:%s  %s  q=quit", m.engine.Strategy, autoLabel)))
	if m.scanning {
		b.WriteString("  ")
		b.WriteString(m.spin.View())
		b.WriteString(m.st.warn.Render("scanning..."))
	}
	b.WriteString("\n")

	if m.result == nil {
		b.WriteString("  Scanning panes...\n")
		return b.String()
	}
	if len(m.result.Panes) == 0 {
		b.WriteString("  " + m.st.dim.Render(m.result.Message) + "\n")
		return b.String()
	}

	header := fmt.Sprintf("  %-8s %6s %6s %6s  %-10s %-10s  %s",
		"pane", "imp", "int", "act", "current", "target", "summary")
	b.WriteString(m.st.header.Render(header))
	b.WriteString("\n")

	summaryWidth := m.width - len(header)
	if summaryWidth < 10 {
		summaryWidth = 10
	}

	active, attention := m.liveEvents()

	for i, p := range m.result.Panes {
		changed := p.Before != p.After && p.After != "unchanged"
		arrow := " "
		if changed {
			arrow = "→"
		}
		// Live hook events mark the pane: ! wants attention, * is active.
		name := p.ID
		switch {
		case attention[p.ID]:
			name += "!"
		case active[p.ID]:
			name += "*"
		}
		row := fmt.Sprintf("  %-8s %6.2f %6.2f %6.2f  %-10s%s%-10s  %s",
			name, p.Importance, p.Interestingness, p.Activity,
			p.Before, arrow, p.After, truncate(p.Summary, summaryWidth))

		switch {
		case i == m.cursor:
			b.WriteString(m.st.selected.Render(row))
		case changed:
			b.WriteString(m.st.warn.Render(row))
		default:
			b.WriteString(m.st.text.Render(row))
		}
		b.WriteString("\n")
	}

	status := m.result.Status
	statusStyle := m.st.dim
	switch status {
	case "applied":
		statusStyle = m.st.good
	case "failed":
		statusStyle = m.st.bad
	}
	summary := fmt.Sprintf("  %s | %d panes | %d ops | scan #%d",
		statusStyle.Render(status), len(m.result.Panes), len(m.result.Operations), m.scanCount)
	if m.result.LLMScored > 0 {
		summary += fmt.Sprintf(" | llm scored %d", m.result.LLMScored)
	}
	if m.lastEvent != "" {
		summary += " | last event: " + m.lastEvent
	}
	b.WriteString(m.st.dim.Render(summary))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(m.st.dim.Render("  " + m.message))
		b.WriteString("\n")
	}

	return b.String()
}

// liveEvents reports which panes currently hold a live hook event.
func (m *tuiModel) liveEvents() (active, attention map[string]bool) {
	active = map[string]bool{}
	attention = map[string]bool{}
	if m.events == nil {
		return active, attention
	}
	now := time.Now()
	for _, id := range m.events.ActivePanes(now) {
		active[id] = true
	}
	for _, e := range m.events.SnapshotAttention(now) {
		attention[e.Pane] = true
	}
	return active, attention
}

func newSpinner(theme Theme) spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Warning)
	return sp
}

func nextStrategy(current model.Strategy) model.Strategy {
	for i, s := range strategyCycle {
		if s == current {
			return strategyCycle[(i+1)%len(strategyCycle)]
		}
	}
	return strategyCycle[0]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
