// Package session provides cross-window pane organization: grouping
// related panes into shared windows and parking idle ones out of the way.
package session

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
)

// Default thresholds for grouping and parking.
const (
	DefaultRelevanceThreshold  = 0.3
	DefaultImportanceThreshold = 0.2

	// parkActivityCeiling keeps recently active panes out of the parking
	// window even when their importance is low.
	parkActivityCeiling = 0.2
)

// Group is a set of related panes that belong in the same window.
type Group struct {
	Name       string   `json:"name"`
	PaneIDs    []string `json:"panes"`
	Topic      string   `json:"topic"`
	Importance float64  `json:"importance"`
}

// PaneSummary is the per-pane slice of a session analysis.
type PaneSummary struct {
	ID         string  `json:"id"`
	Command    string  `json:"command"`
	Window     string  `json:"window"`
	Importance float64 `json:"importance"`
	Activity   float64 `json:"activity"`
}

// Analysis is a session-wide content analysis with grouping suggestions.
type Analysis struct {
	PaneCount       int                 `json:"pane_count"`
	WindowCount     int                 `json:"window_count"`
	Windows         map[string][]string `json:"windows"`
	Panes           []PaneSummary       `json:"panes"`
	SuggestedGroups []Group             `json:"suggested_groups"`
}

// Move is one proposed or applied cross-window pane move.
type Move struct {
	PaneID string `json:"pane"`
	From   string `json:"from"`
	To     string `json:"to"`
	Group  string `json:"group,omitempty"`
	Err    error  `json:"-"`
}

// OptimizeResult reports a session optimization run.
type OptimizeResult struct {
	Status   string    `json:"status"` // calculated, applied
	Analysis *Analysis `json:"analysis"`
	Moves    []Move    `json:"moves"`
}

// ConsolidateResult reports a consolidate-related run.
type ConsolidateResult struct {
	Status        string   `json:"status"` // calculated, applied, no_related_panes
	ReferencePane string   `json:"reference_pane"`
	RelatedPanes  []string `json:"related_panes"`
	TargetWindow  string   `json:"target_window,omitempty"`
	Moves         []Move   `json:"moves"`
}

// ParkResult reports a park-inactive run.
type ParkResult struct {
	Status        string        `json:"status"` // calculated, applied, nothing_to_park
	ToPark        []PaneSummary `json:"to_park"`
	WindowName    string        `json:"window_name"`
	ParkingWindow string        `json:"parking_window,omitempty"`
}

// Optimizer arranges panes across the windows of a session. It requires
// an adapter with cross-window support.
type Optimizer struct {
	adapter  mux.Adapter
	analyzer *analyzer.Analyzer

	// RelevanceThreshold is the minimum combined relevance for two panes
	// to be grouped.
	RelevanceThreshold float64

	// ImportanceThreshold marks panes below it as parking candidates.
	ImportanceThreshold float64
}

// NewOptimizer creates an optimizer with default thresholds.
func NewOptimizer(adapter mux.Adapter, a *analyzer.Analyzer) *Optimizer {
	if a == nil {
		a = analyzer.New()
	}
	return &Optimizer{
		adapter:             adapter,
		analyzer:            a,
		RelevanceThreshold:  DefaultRelevanceThreshold,
		ImportanceThreshold: DefaultImportanceThreshold,
	}
}

// Analyze scores every pane in the session, groups them by window, and
// suggests relevance-based groupings.
func (o *Optimizer) Analyze(ctx context.Context) (*Analysis, error) {
	if !o.adapter.IsAvailable(ctx) {
		return nil, model.ErrAdapterUnavailable
	}

	panes, err := o.adapter.AllPanes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing session panes: %w", err)
	}
	if len(panes) == 0 {
		return nil, model.ErrNoPanes
	}

	analyses := o.analyzer.AnalyzePanes(panes)
	matrix := o.analyzer.RelevanceMatrix(panes)

	windows := make(map[string][]string)
	summaries := make([]PaneSummary, 0, len(panes))
	for _, p := range panes {
		win := windowOf(p.Title)
		windows[win] = append(windows[win], p.ID)
		summaries = append(summaries, PaneSummary{
			ID:         p.ID,
			Command:    p.Command,
			Window:     win,
			Importance: analyses[p.ID].ImportanceScore,
			Activity:   analyses[p.ID].RecentActivityScore,
		})
	}

	return &Analysis{
		PaneCount:       len(panes),
		WindowCount:     len(windows),
		Windows:         windows,
		Panes:           summaries,
		SuggestedGroups: o.suggestGroups(panes, analyses, matrix),
	}, nil
}

// suggestGroups greedily seeds groups from the most important unassigned
// pane and pulls in every pane above the relevance threshold. Panes left
// over land in a final "misc" group.
func (o *Optimizer) suggestGroups(
	panes []model.PaneSnapshot,
	analyses map[string]model.AnalysisResult,
	matrix analyzer.RelevanceMatrix,
) []Group {
	ordered := make([]model.PaneSnapshot, len(panes))
	copy(ordered, panes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return analyses[ordered[i].ID].ImportanceScore > analyses[ordered[j].ID].ImportanceScore
	})

	var groups []Group
	assigned := make(map[string]bool)

	for _, seed := range ordered {
		if assigned[seed.ID] {
			continue
		}
		group := Group{
			Name:       fmt.Sprintf("group_%d", len(groups)+1),
			PaneIDs:    []string{seed.ID},
			Topic:      seed.Command,
			Importance: analyses[seed.ID].ImportanceScore,
		}
		assigned[seed.ID] = true

		for _, other := range panes {
			if assigned[other.ID] {
				continue
			}
			rel, ok := matrix.Get(seed.ID, other.ID)
			if !ok || rel.CombinedScore < o.RelevanceThreshold {
				continue
			}
			group.PaneIDs = append(group.PaneIDs, other.ID)
			assigned[other.ID] = true
			if len(rel.SharedKeywords) > 0 {
				group.Topic = rel.SharedKeywords[0]
			}
		}

		if len(group.PaneIDs) > 1 {
			groups = append(groups, group)
		} else {
			assigned[seed.ID] = true
		}
	}

	var remaining []string
	for _, p := range panes {
		inGroup := false
		for _, g := range groups {
			for _, id := range g.PaneIDs {
				if id == p.ID {
					inGroup = true
				}
			}
		}
		if !inGroup {
			remaining = append(remaining, p.ID)
		}
	}
	if len(remaining) > 0 {
		groups = append(groups, Group{
			Name:    "misc",
			PaneIDs: remaining,
			Topic:   "miscellaneous",
		})
	}

	return groups
}

// Optimize proposes (and with dryRun false, applies) the moves that bring
// each suggested group together in its majority window.
func (o *Optimizer) Optimize(ctx context.Context, dryRun bool) (*OptimizeResult, error) {
	analysis, err := o.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	panes, err := o.adapter.AllPanes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing session panes: %w", err)
	}
	currentWindow := make(map[string]string, len(panes))
	for _, p := range panes {
		currentWindow[p.ID] = windowOf(p.Title)
	}

	var moves []Move
	for _, group := range analysis.SuggestedGroups {
		if group.Name == "misc" || len(group.PaneIDs) < 2 {
			continue
		}

		target := majorityWindow(group.PaneIDs, currentWindow)
		for _, id := range group.PaneIDs {
			if currentWindow[id] == target {
				continue
			}
			moves = append(moves, Move{
				PaneID: id,
				From:   currentWindow[id],
				To:     target,
				Group:  group.Name,
			})
		}
	}

	result := &OptimizeResult{
		Status:   "calculated",
		Analysis: analysis,
		Moves:    moves,
	}

	if !dryRun {
		for i := range moves {
			moves[i].Err = o.adapter.MovePane(ctx, moves[i].PaneID, moves[i].To, true)
		}
		result.Status = "applied"
	}

	return result, nil
}

// ConsolidateRelated moves every pane related to the reference pane into
// the reference pane's window.
func (o *Optimizer) ConsolidateRelated(ctx context.Context, paneID string, dryRun bool) (*ConsolidateResult, error) {
	panes, err := o.adapter.AllPanes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing session panes: %w", err)
	}
	if len(panes) == 0 {
		return nil, model.ErrNoPanes
	}

	matrix := o.analyzer.RelevanceMatrix(panes)

	related := []string{paneID}
	targetWindow := ""
	for _, p := range panes {
		if p.ID == paneID {
			targetWindow = windowOf(p.Title)
			continue
		}
		if rel, ok := matrix.Get(paneID, p.ID); ok && rel.CombinedScore >= o.RelevanceThreshold {
			related = append(related, p.ID)
		}
	}

	if len(related) <= 1 {
		return &ConsolidateResult{
			Status:        "no_related_panes",
			ReferencePane: paneID,
			RelatedPanes:  related,
		}, nil
	}
	if targetWindow == "" {
		return nil, fmt.Errorf("reference pane %q not found in session", paneID)
	}

	var moves []Move
	for _, p := range panes {
		if p.ID == paneID {
			continue
		}
		for _, id := range related {
			if p.ID != id {
				continue
			}
			if from := windowOf(p.Title); from != targetWindow {
				moves = append(moves, Move{PaneID: id, From: from, To: targetWindow})
			}
		}
	}

	result := &ConsolidateResult{
		Status:        "calculated",
		ReferencePane: paneID,
		RelatedPanes:  related,
		TargetWindow:  targetWindow,
		Moves:         moves,
	}

	if !dryRun {
		for i := range moves {
			moves[i].Err = o.adapter.MovePane(ctx, moves[i].PaneID, moves[i].To, true)
		}
		result.Status = "applied"
	}

	return result, nil
}

// ParkInactive moves panes that are both unimportant and quiet into a
// dedicated parking window. The first parked pane is broken out to create
// the window, the rest join it.
func (o *Optimizer) ParkInactive(ctx context.Context, windowName string, dryRun bool) (*ParkResult, error) {
	panes, err := o.adapter.AllPanes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing session panes: %w", err)
	}
	if len(panes) == 0 {
		return nil, model.ErrNoPanes
	}

	analyses := o.analyzer.AnalyzePanes(panes)

	var toPark []PaneSummary
	for _, p := range panes {
		a := analyses[p.ID]
		if a.ImportanceScore < o.ImportanceThreshold && a.RecentActivityScore < parkActivityCeiling {
			toPark = append(toPark, PaneSummary{
				ID:         p.ID,
				Command:    p.Command,
				Window:     windowOf(p.Title),
				Importance: a.ImportanceScore,
				Activity:   a.RecentActivityScore,
			})
		}
	}

	if len(toPark) == 0 {
		return &ParkResult{Status: "nothing_to_park", WindowName: windowName}, nil
	}

	result := &ParkResult{
		Status:     "calculated",
		ToPark:     toPark,
		WindowName: windowName,
	}

	if !dryRun {
		parking, err := o.adapter.BreakPane(ctx, toPark[0].ID, windowName)
		if err != nil {
			return nil, fmt.Errorf("creating parking window: %w", err)
		}
		for _, p := range toPark[1:] {
			if err := o.adapter.MovePane(ctx, p.ID, parking, true); err != nil {
				return nil, fmt.Errorf("parking pane %s: %w", p.ID, err)
			}
		}
		result.ParkingWindow = parking
		result.Status = "applied"
	}

	return result, nil
}

// windowOf extracts the window id from a cross-window snapshot title
// ("windowID:title").
func windowOf(title string) string {
	if idx := strings.IndexByte(title, ':'); idx >= 0 {
		return title[:idx]
	}
	return "unknown"
}

// majorityWindow returns the window holding the most of the given panes.
// Ties resolve to the lexicographically smallest window id so repeated
// runs propose identical moves.
func majorityWindow(paneIDs []string, currentWindow map[string]string) string {
	counts := make(map[string]int)
	for _, id := range paneIDs {
		counts[currentWindow[id]]++
	}

	windows := make([]string, 0, len(counts))
	for w := range counts {
		windows = append(windows, w)
	}
	sort.Strings(windows)

	best := windows[0]
	for _, w := range windows[1:] {
		if counts[w] > counts[best] {
			best = w
		}
	}
	return best
}
