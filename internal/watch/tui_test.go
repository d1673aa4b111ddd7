package watch

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/events"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
	"github.com/timvw/panefit/internal/reflow"
)

func newTestModel() *tuiModel {
	adapter := mux.NewMemory(160, 40, []model.PaneSnapshot{
		{ID: "%1", X: 0, Y: 0, Width: 80, Height: 40, Content: "$ git status\noutput"},
		{ID: "%2", X: 80, Y: 0, Width: 80, Height: 40, Content: ""},
	})
	engine := &reflow.Engine{
		Adapter:    adapter,
		Analyzer:   analyzer.New(),
		Strategy:   model.StrategyBalanced,
		LayoutType: model.LayoutAuto,
	}
	return &tuiModel{
		engine: engine,
		ctx:    context.Background(),
		st:     newStyles(DarkTheme()),
		spin:   newSpinner(DarkTheme()),
		width:  120,
		height: 40,
	}
}

func runCmd(t *testing.T, m *tuiModel, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if msg == nil {
		t.Fatal("command produced no message")
	}
	_, _ = m.Update(msg)
}

func TestKey_RescanTriggered(t *testing.T) {
	m := newTestModel()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
	_, cmd := m.handleKey(msg)
	if !m.scanning {
		t.Error("expected scanning=true after r key")
	}
	runCmd(t, m, cmd)
	if m.result == nil {
		t.Fatal("expected a reflow result after rescan")
	}
	if m.result.Status != "calculated" {
		t.Errorf("r key should dry-run, got status %q", m.result.Status)
	}
}

func TestKey_EnterApplies(t *testing.T) {
	m := newTestModel()
	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := m.handleKey(msg)
	runCmd(t, m, cmd)
	if m.result == nil || m.result.Status != "applied" {
		t.Fatalf("expected applied result, got %+v", m.result)
	}
}

func TestKey_StrategyCycles(t *testing.T) {
	m := newTestModel()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}

	seen := map[model.Strategy]bool{m.engine.Strategy: true}
	for i := 0; i < len(strategyCycle)-1; i++ {
		_, _ = m.handleKey(msg)
		seen[m.engine.Strategy] = true
	}
	if len(seen) != len(strategyCycle) {
		t.Errorf("cycled through %d strategies, want %d", len(seen), len(strategyCycle))
	}

	// One more press wraps around to the start
	start := m.engine.Strategy
	for i := 0; i < len(strategyCycle); i++ {
		_, _ = m.handleKey(msg)
	}
	if m.engine.Strategy != start {
		t.Errorf("strategy cycle did not wrap: got %s, want %s", m.engine.Strategy, start)
	}
}

func TestKey_ToggleAutoApply(t *testing.T) {
	m := newTestModel()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}

	_, _ = m.handleKey(msg)
	if !m.autoApply {
		t.Error("expected autoApply=true after a key")
	}
	_, _ = m.handleKey(msg)
	if m.autoApply {
		t.Error("expected autoApply=false after second a key")
	}
}

func TestKey_CursorNavigation(t *testing.T) {
	m := newTestModel()
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	runCmd(t, m, cmd)

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	_, _ = m.handleKey(down)
	if m.cursor != 1 {
		t.Errorf("cursor after down: got %d, want 1", m.cursor)
	}
	_, _ = m.handleKey(down)
	if m.cursor != 1 {
		t.Errorf("cursor should clamp at last pane, got %d", m.cursor)
	}
	_, _ = m.handleKey(up)
	if m.cursor != 0 {
		t.Errorf("cursor after up: got %d, want 0", m.cursor)
	}
}

func TestUpdate_ReflowErrorShowsMessage(t *testing.T) {
	m := newTestModel()
	_, _ = m.Update(reflowResultMsg{err: model.ErrAdapterUnavailable})
	if m.message == "" {
		t.Error("expected error message after failed reflow")
	}
	if m.scanning {
		t.Error("scanning should clear after result")
	}
}

func TestView_RendersScoreTable(t *testing.T) {
	m := newTestModel()
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	runCmd(t, m, cmd)

	view := m.View()
	if !strings.Contains(view, "%1") || !strings.Contains(view, "%2") {
		t.Error("view should list both panes")
	}
	if !strings.Contains(view, "imp") || !strings.Contains(view, "target") {
		t.Error("view should include the score table header")
	}
	if !strings.Contains(view, "calculated") {
		t.Error("view should show the last reflow status")
	}
}

func TestView_MarksPanesWithLiveEvents(t *testing.T) {
	m := newTestModel()
	store := events.NewStore(time.Minute)
	store.Upsert(events.Event{Pane: "%1", Kind: events.KindOutput, TS: time.Now()})
	store.Upsert(events.Event{Pane: "%2", Kind: events.KindAttention, TS: time.Now()})
	m.events = store

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	runCmd(t, m, cmd)

	view := m.View()
	if !strings.Contains(view, "%1*") {
		t.Error("pane with a live output event should be marked with *")
	}
	if !strings.Contains(view, "%2!") {
		t.Error("pane with a live attention event should be marked with !")
	}
}

func TestView_BeforeFirstScan(t *testing.T) {
	m := newTestModel()
	if !strings.Contains(m.View(), "Scanning panes") {
		t.Error("expected placeholder before first result")
	}
}

func TestNextStrategyUnknownFallsBack(t *testing.T) {
	if got := nextStrategy(model.Strategy("bogus")); got != model.StrategyBalanced {
		t.Errorf("unknown strategy should fall back to balanced, got %s", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 8); got != "hello..." {
		t.Errorf("truncate: got %q", got)
	}
	if got := truncate("hi", 8); got != "hi" {
		t.Errorf("truncate short: got %q", got)
	}
}
