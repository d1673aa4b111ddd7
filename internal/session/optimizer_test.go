package session

import (
	"context"
	"testing"

	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
)

const (
	gitContent = "git commit push merge rebase branch checkout remote fetch pull upstream origin"
	k8sContent = "kubernetes deployment scaling replicas ingress namespace cluster nodes rollout helm"
)

// sessionPanes returns two related panes (identical git content) and one
// unrelated kubernetes pane.
func sessionPanes() []model.PaneSnapshot {
	return []model.PaneSnapshot{
		{ID: "%1", X: 0, Y: 0, Width: 100, Height: 50, Active: true, Command: "git", Content: gitContent},
		{ID: "%2", X: 100, Y: 0, Width: 100, Height: 50, Command: "git", Content: gitContent},
		{ID: "%3", X: 0, Y: 25, Width: 200, Height: 25, Command: "k9s", Content: k8sContent},
	}
}

func windowByTitle(t *testing.T, m *mux.Memory, paneID string) string {
	t.Helper()
	panes, err := m.AllPanes(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range panes {
		if p.ID == paneID {
			return windowOf(p.Title)
		}
	}
	t.Fatalf("pane %s not found", paneID)
	return ""
}

func TestAnalyzeGroupsRelatedPanes(t *testing.T) {
	m := mux.NewMemory(200, 50, sessionPanes())
	opt := NewOptimizer(m, nil)

	analysis, err := opt.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if analysis.PaneCount != 3 {
		t.Errorf("PaneCount: got %d, want 3", analysis.PaneCount)
	}
	if analysis.WindowCount != 1 {
		t.Errorf("WindowCount: got %d, want 1", analysis.WindowCount)
	}

	var gitGroup *Group
	var miscGroup *Group
	for i := range analysis.SuggestedGroups {
		g := &analysis.SuggestedGroups[i]
		if g.Name == "misc" {
			miscGroup = g
		} else {
			gitGroup = g
		}
	}

	if gitGroup == nil {
		t.Fatal("expected a suggested group for the related git panes")
	}
	if len(gitGroup.PaneIDs) != 2 {
		t.Fatalf("git group panes: got %v, want %%1 and %%2", gitGroup.PaneIDs)
	}
	for _, id := range gitGroup.PaneIDs {
		if id != "%1" && id != "%2" {
			t.Errorf("unexpected pane %s in git group", id)
		}
	}

	if miscGroup == nil {
		t.Fatal("expected a misc group for the unrelated pane")
	}
	if len(miscGroup.PaneIDs) != 1 || miscGroup.PaneIDs[0] != "%3" {
		t.Errorf("misc group panes: got %v, want [%%3]", miscGroup.PaneIDs)
	}
}

func TestOptimizeMovesGroupTogether(t *testing.T) {
	m := mux.NewMemory(200, 50, sessionPanes())
	// Split the related pair across two windows.
	if _, err := m.BreakPane(context.Background(), "%2", "scratch"); err != nil {
		t.Fatal(err)
	}
	opt := NewOptimizer(m, nil)

	result, err := opt.Optimize(context.Background(), true)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if result.Status != "calculated" {
		t.Errorf("Status: got %q, want %q", result.Status, "calculated")
	}
	if len(result.Moves) != 1 {
		t.Fatalf("moves: got %d, want 1 (%+v)", len(result.Moves), result.Moves)
	}
	if result.Moves[0].PaneID != "%2" || result.Moves[0].To != "@0" {
		t.Errorf("move: got %+v, want %%2 to @0", result.Moves[0])
	}

	// Dry run must not touch the session.
	if win := windowByTitle(t, m, "%2"); win != "@1" {
		t.Errorf("dry run moved pane: %%2 now in %s", win)
	}

	applied, err := opt.Optimize(context.Background(), false)
	if err != nil {
		t.Fatalf("Optimize(apply) error: %v", err)
	}
	if applied.Status != "applied" {
		t.Errorf("Status: got %q, want %q", applied.Status, "applied")
	}
	for _, mv := range applied.Moves {
		if mv.Err != nil {
			t.Errorf("move %+v failed: %v", mv, mv.Err)
		}
	}
	if win := windowByTitle(t, m, "%2"); win != "@0" {
		t.Errorf("after apply: %%2 in %s, want @0", win)
	}
}

func TestOptimizeAlreadyGrouped(t *testing.T) {
	m := mux.NewMemory(200, 50, sessionPanes())
	opt := NewOptimizer(m, nil)

	result, err := opt.Optimize(context.Background(), true)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if len(result.Moves) != 0 {
		t.Errorf("expected no moves for a single-window session, got %+v", result.Moves)
	}
}

func TestConsolidateRelated(t *testing.T) {
	m := mux.NewMemory(200, 50, sessionPanes())
	if _, err := m.BreakPane(context.Background(), "%2", "scratch"); err != nil {
		t.Fatal(err)
	}
	opt := NewOptimizer(m, nil)

	result, err := opt.ConsolidateRelated(context.Background(), "%1", false)
	if err != nil {
		t.Fatalf("ConsolidateRelated() error: %v", err)
	}
	if result.Status != "applied" {
		t.Errorf("Status: got %q, want %q", result.Status, "applied")
	}
	if result.TargetWindow != "@0" {
		t.Errorf("TargetWindow: got %q, want %q", result.TargetWindow, "@0")
	}
	if len(result.RelatedPanes) != 2 {
		t.Errorf("RelatedPanes: got %v, want reference plus one", result.RelatedPanes)
	}
	if win := windowByTitle(t, m, "%2"); win != "@0" {
		t.Errorf("after consolidate: %%2 in %s, want @0", win)
	}
	// The unrelated pane stays put.
	if win := windowByTitle(t, m, "%3"); win != "@0" {
		t.Errorf("unrelated pane moved to %s", win)
	}
}

func TestConsolidateNoRelatedPanes(t *testing.T) {
	m := mux.NewMemory(200, 50, sessionPanes())
	opt := NewOptimizer(m, nil)

	result, err := opt.ConsolidateRelated(context.Background(), "%3", true)
	if err != nil {
		t.Fatalf("ConsolidateRelated() error: %v", err)
	}
	if result.Status != "no_related_panes" {
		t.Errorf("Status: got %q, want %q", result.Status, "no_related_panes")
	}
	if len(result.Moves) != 0 {
		t.Errorf("expected no moves, got %+v", result.Moves)
	}
}

func TestParkInactive(t *testing.T) {
	busy := "$ git status\n$ make build\n$ go test ./...\n$ docker compose up\n$ git diff\n"
	panes := []model.PaneSnapshot{
		{ID: "%1", Width: 100, Height: 50, Active: true, Command: "zsh", Content: busy},
		{ID: "%2", Width: 50, Height: 50, Command: "zsh", Content: ""},
		{ID: "%3", Width: 50, Height: 50, Command: "zsh", Content: "\n   \n"},
	}
	m := mux.NewMemory(200, 50, panes)
	opt := NewOptimizer(m, nil)

	dry, err := opt.ParkInactive(context.Background(), "parked", true)
	if err != nil {
		t.Fatalf("ParkInactive(dry) error: %v", err)
	}
	if dry.Status != "calculated" {
		t.Errorf("Status: got %q, want %q", dry.Status, "calculated")
	}
	if len(dry.ToPark) != 2 {
		t.Fatalf("ToPark: got %+v, want the two idle panes", dry.ToPark)
	}
	for _, p := range dry.ToPark {
		if p.ID == "%1" {
			t.Error("busy pane selected for parking")
		}
	}
	if windows, _ := m.Windows(context.Background(), ""); len(windows) != 1 {
		t.Error("dry run created a window")
	}

	applied, err := opt.ParkInactive(context.Background(), "parked", false)
	if err != nil {
		t.Fatalf("ParkInactive(apply) error: %v", err)
	}
	if applied.Status != "applied" {
		t.Errorf("Status: got %q, want %q", applied.Status, "applied")
	}
	if applied.ParkingWindow == "" {
		t.Fatal("ParkingWindow not set after apply")
	}

	windows, err := m.Windows(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range windows {
		if w.ID == applied.ParkingWindow {
			if w.Name != "parked" {
				t.Errorf("parking window name: got %q, want %q", w.Name, "parked")
			}
			if w.PaneCount != 2 {
				t.Errorf("parking window panes: got %d, want 2", w.PaneCount)
			}
		}
	}
	if win := windowByTitle(t, m, "%1"); win != "@0" {
		t.Errorf("busy pane parked into %s", win)
	}
}

func TestParkNothingToPark(t *testing.T) {
	busy := "$ git status\n$ make build\n$ go test ./...\n$ npm run lint\n$ cargo check\n"
	panes := []model.PaneSnapshot{
		{ID: "%1", Width: 100, Height: 50, Command: "zsh", Content: busy},
		{ID: "%2", Width: 100, Height: 50, Command: "zsh", Content: busy},
	}
	m := mux.NewMemory(200, 50, panes)
	opt := NewOptimizer(m, nil)

	result, err := opt.ParkInactive(context.Background(), "parked", false)
	if err != nil {
		t.Fatalf("ParkInactive() error: %v", err)
	}
	if result.Status != "nothing_to_park" {
		t.Errorf("Status: got %q, want %q", result.Status, "nothing_to_park")
	}
}
