package reflow

import (
	"context"
	"strings"
	"testing"

	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
)

func testEngine(adapter mux.Adapter) *Engine {
	return &Engine{
		Adapter:    adapter,
		Analyzer:   analyzer.New(),
		Strategy:   model.StrategyBalanced,
		LayoutType: model.LayoutAuto,
	}
}

func TestRunSkipsSinglePane(t *testing.T) {
	m := mux.NewMemory(160, 40, []model.PaneSnapshot{
		{ID: "%1", Width: 160, Height: 40, Content: "alone"},
	})
	result, err := testEngine(m).Run(context.Background(), "", false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Status != "skipped" {
		t.Errorf("status: got %q, want skipped", result.Status)
	}
}

func TestRunDryRunLeavesPanesUntouched(t *testing.T) {
	m := mux.NewMemory(160, 40, []model.PaneSnapshot{
		{ID: "%1", X: 0, Y: 0, Width: 80, Height: 40, Content: "$ git status\n$ make build\nlots of output here"},
		{ID: "%2", X: 80, Y: 0, Width: 80, Height: 40, Content: ""},
	})

	result, err := testEngine(m).Run(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Status != "calculated" {
		t.Errorf("status: got %q, want calculated", result.Status)
	}
	if len(result.Operations) == 0 {
		t.Error("expected planned operations")
	}
	if len(result.Steps) != 0 {
		t.Errorf("dry run executed %d steps", len(result.Steps))
	}

	panes, _ := m.Panes(context.Background(), "")
	for _, p := range panes {
		if p.Width != 80 || p.Height != 40 {
			t.Errorf("pane %s geometry changed on dry run: %dx%d", p.ID, p.Width, p.Height)
		}
	}
}

func TestRunAppliesLayout(t *testing.T) {
	busy := "$ git status\n$ make build\n$ go test ./...\nplenty of distinct build output lines here"
	m := mux.NewMemory(160, 40, []model.PaneSnapshot{
		{ID: "%1", X: 0, Y: 0, Width: 80, Height: 40, Content: busy},
		{ID: "%2", X: 80, Y: 0, Width: 80, Height: 40, Content: "\n"},
	})

	result, err := testEngine(m).Run(context.Background(), "", false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Status != "applied" {
		t.Fatalf("status: got %q, want applied (message %q)", result.Status, result.Message)
	}

	// The busy pane should end up wider than the idle one.
	panes, _ := m.Panes(context.Background(), "")
	var busyWidth, idleWidth int
	for _, p := range panes {
		switch p.ID {
		case "%1":
			busyWidth = p.Width
		case "%2":
			idleWidth = p.Width
		}
	}
	if busyWidth <= idleWidth {
		t.Errorf("busy pane %d should be wider than idle pane %d", busyWidth, idleWidth)
	}
	if busyWidth+idleWidth != 160 {
		t.Errorf("widths sum to %d, want 160", busyWidth+idleWidth)
	}
}

func TestRunReportsPerPaneSizes(t *testing.T) {
	m := mux.NewMemory(160, 40, []model.PaneSnapshot{
		{ID: "%1", X: 0, Y: 0, Width: 80, Height: 40, Content: "$ git diff\nchanged files listed here"},
		{ID: "%2", X: 80, Y: 0, Width: 80, Height: 40, Content: "quiet"},
	})

	result, err := testEngine(m).Run(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.Panes) != 2 {
		t.Fatalf("pane reports: got %d, want 2", len(result.Panes))
	}
	for _, r := range result.Panes {
		if r.Before != "80x40" {
			t.Errorf("pane %s before: got %q, want 80x40", r.ID, r.Before)
		}
		if r.After == "unchanged" {
			t.Errorf("pane %s has no target size", r.ID)
		}
		if !strings.Contains(r.After, "x") {
			t.Errorf("pane %s after: malformed %q", r.ID, r.After)
		}
	}
}

func TestRunOperationFormat(t *testing.T) {
	m := mux.NewMemory(160, 40, []model.PaneSnapshot{
		{ID: "%1", X: 0, Y: 0, Width: 80, Height: 40, Content: "a b c"},
		{ID: "%2", X: 80, Y: 0, Width: 80, Height: 40, Content: "d e f"},
	})

	result, err := testEngine(m).Run(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for _, op := range result.Operations {
		if !strings.HasPrefix(op, "swap(") && !strings.HasPrefix(op, "resize(") {
			t.Errorf("unexpected operation %q", op)
		}
	}
}
