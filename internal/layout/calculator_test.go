package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/model"
)

func TestDistributeSumsToTotal(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		total  int
		min    int
	}{
		{"spread scores", []float64{0.6, 0.3, 0.1}, 100, 20},
		{"equal scores", []float64{0.25, 0.25, 0.25, 0.25}, 97, 5},
		{"two panes", []float64{0.9, 0.1}, 160, 20},
		{"single pane", []float64{1.0}, 80, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := makeScores(tt.scores)
			sizes := Distribute(scores, tt.total, tt.min)

			sum := 0
			for i, s := range sizes {
				sum += s
				if s < tt.min && len(sizes) > 1 {
					t.Errorf("size[%d] = %d below min %d", i, s, tt.min)
				}
			}
			if sum != tt.total {
				t.Errorf("sizes sum to %d, want %d", sum, tt.total)
			}
		})
	}
}

func TestDistributeOrderingMatchesScores(t *testing.T) {
	scores := makeScores([]float64{0.6, 0.3, 0.1})
	sizes := Distribute(scores, 100, 20)

	if !(sizes[0] > sizes[1] && sizes[1] > sizes[2]) {
		t.Errorf("size ordering %v does not match score ordering [0.6 0.3 0.1]", sizes)
	}
}

func TestDistributeDegradesToEqualSplit(t *testing.T) {
	// 4 panes at min 20 need 80 columns; only 60 available.
	scores := makeScores([]float64{0.7, 0.1, 0.1, 0.1})
	sizes := Distribute(scores, 60, 20)

	for i, s := range sizes {
		if s != 15 {
			t.Errorf("size[%d] = %d, want equal split 15", i, s)
		}
	}
}

func TestScoresNormalized(t *testing.T) {
	c := NewCalculator(model.StrategyBalanced)
	panes := []model.PaneSnapshot{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	analyses := map[string]model.AnalysisResult{
		"a": {ImportanceScore: 0.9, InterestingnessScore: 0.5, RecentActivityScore: 0.8},
		"b": {ImportanceScore: 0.2, InterestingnessScore: 0.3, RecentActivityScore: 0.1},
	}

	scores := c.Scores(panes, analyses)
	sum := 0.0
	for _, s := range scores {
		sum += s.Combined
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("combined scores sum to %v, want 1", sum)
	}
}

func TestScoresRelatedUsesPlainMean(t *testing.T) {
	c := NewCalculator(model.StrategyRelated)
	panes := []model.PaneSnapshot{{ID: "a"}, {ID: "b"}}
	analyses := map[string]model.AnalysisResult{
		"a": {ImportanceScore: 0.9},
		"b": {RecentActivityScore: 0.6},
	}

	// Means are 0.3 and 0.2, so after normalization a gets 0.6. The
	// balanced weighting would give a 2/3 instead.
	scores := c.Scores(panes, analyses)
	if math.Abs(scores[0].Combined-0.6) > 1e-9 {
		t.Errorf("related combined for a = %v, want 0.6", scores[0].Combined)
	}
	if math.Abs(scores[1].Combined-0.4) > 1e-9 {
		t.Errorf("related combined for b = %v, want 0.4", scores[1].Combined)
	}
}

func TestScoresActiveBoost(t *testing.T) {
	c := NewCalculator(model.StrategyImportance)
	analyses := map[string]model.AnalysisResult{
		"a": {ImportanceScore: 0.5},
		"b": {ImportanceScore: 0.5},
	}

	scores := c.Scores([]model.PaneSnapshot{{ID: "a", Active: true}, {ID: "b"}}, analyses)
	if scores[0].Importance != 0.7 {
		t.Errorf("active pane importance = %v, want 0.7", scores[0].Importance)
	}
	if scores[1].Importance != 0.5 {
		t.Errorf("inactive pane importance = %v, want 0.5", scores[1].Importance)
	}

	// Boost never pushes importance past 1.
	analyses["a"] = model.AnalysisResult{ImportanceScore: 0.95}
	scores = c.Scores([]model.PaneSnapshot{{ID: "a", Active: true}}, analyses)
	if scores[0].Importance != 1 {
		t.Errorf("boosted importance = %v, want capped at 1", scores[0].Importance)
	}
}

func TestCalculatePreservesIDSet(t *testing.T) {
	c := NewCalculator(model.StrategyBalanced)
	panes := []model.PaneSnapshot{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	for _, lt := range []model.LayoutType{
		model.LayoutHorizontal, model.LayoutVertical, model.LayoutTiled, model.LayoutAuto,
	} {
		layout := c.Calculate(panes, nil, 200, 50, nil, lt)
		if len(layout.Panes) != len(panes) {
			t.Fatalf("%s: got %d panes, want %d", lt, len(layout.Panes), len(panes))
		}
		seen := map[string]bool{}
		for _, p := range layout.Panes {
			if seen[p.ID] {
				t.Errorf("%s: duplicate pane id %q", lt, p.ID)
			}
			seen[p.ID] = true
		}
		for _, p := range panes {
			if !seen[p.ID] {
				t.Errorf("%s: missing pane id %q", lt, p.ID)
			}
		}
	}
}

func TestAutoTwoPanesUsesAspectRatio(t *testing.T) {
	c := NewCalculator(model.StrategyBalanced)
	panes := []model.PaneSnapshot{{ID: "a"}, {ID: "b"}}

	// Aspect 160/40 = 4.0 > 1.5: horizontal, both full height.
	wide := c.Calculate(panes, nil, 160, 40, nil, model.LayoutAuto)
	for _, p := range wide.Panes {
		if p.Height != 40 {
			t.Errorf("wide window: pane %s height = %d, want 40", p.ID, p.Height)
		}
	}

	// Aspect 80/60 ≈ 1.33 ≤ 1.5: vertical, both full width.
	tall := c.Calculate(panes, nil, 80, 60, nil, model.LayoutAuto)
	for _, p := range tall.Panes {
		if p.Width != 80 {
			t.Errorf("tall window: pane %s width = %d, want 80", p.ID, p.Width)
		}
	}
}

func TestBusyPaneGetsWiderSplit(t *testing.T) {
	a := analyzer.New()
	panes := []model.PaneSnapshot{
		{ID: "A", Content: strings.Repeat("$ git status\n", 80)},
		{ID: "B", Content: "\n"},
	}
	analyses := a.AnalyzePanes(panes)

	if analyses["A"].ImportanceScore <= analyses["B"].ImportanceScore {
		t.Fatalf("importance A %v <= B %v", analyses["A"].ImportanceScore, analyses["B"].ImportanceScore)
	}

	c := NewCalculator(model.StrategyBalanced)
	layout := c.Calculate(panes, analyses, 160, 40, nil, model.LayoutAuto)

	byID := map[string]model.PaneLayout{}
	for _, p := range layout.Panes {
		byID[p.ID] = p
	}
	if byID["A"].Width <= byID["B"].Width {
		t.Errorf("busy pane width %d <= idle pane width %d", byID["A"].Width, byID["B"].Width)
	}
	for id, p := range byID {
		if p.Width < c.MinWidth {
			t.Errorf("pane %s width %d below minimum %d", id, p.Width, c.MinWidth)
		}
	}
	if byID["A"].Width+byID["B"].Width != 160 {
		t.Errorf("widths %d+%d do not fill window", byID["A"].Width, byID["B"].Width)
	}
}

func TestTiledMainPaneGoldenRatio(t *testing.T) {
	c := NewCalculator(model.StrategyImportance)
	panes := []model.PaneSnapshot{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	analyses := map[string]model.AnalysisResult{
		"a": {ImportanceScore: 0.9},
		"b": {ImportanceScore: 0.3},
		"c": {ImportanceScore: 0.1},
	}

	layout := c.Calculate(panes, analyses, 162, 50, nil, model.LayoutTiled)

	main := layout.Panes[0]
	if main.ID != "a" {
		t.Fatalf("main pane = %s, want top scorer a", main.ID)
	}
	windowWidth := 162.0
	if want := int(windowWidth / goldenRatio); main.Width != want {
		t.Errorf("main width = %d, want %d", main.Width, want)
	}
	if main.Height != 50 {
		t.Errorf("main height = %d, want full 50", main.Height)
	}

	sideHeight := 0
	for _, p := range layout.Panes[1:] {
		if p.X != main.Width {
			t.Errorf("side pane %s x = %d, want %d", p.ID, p.X, main.Width)
		}
		sideHeight += p.Height
	}
	if sideHeight != 50 {
		t.Errorf("side column heights sum to %d, want 50", sideHeight)
	}
}

func TestRelatedOrdersSideColumnByRelevance(t *testing.T) {
	a := analyzer.New()
	panes := []model.PaneSnapshot{
		{ID: "main", Content: "git commit push merge branch rebase", Active: true},
		{ID: "far", Content: "weather sunny rainy cloudy forecast"},
		{ID: "near", Content: "git branch checkout merge commit"},
	}
	analyses := map[string]model.AnalysisResult{
		"main": {ImportanceScore: 0.9, InterestingnessScore: 0.9, RecentActivityScore: 0.9},
		"far":  {ImportanceScore: 0.4, InterestingnessScore: 0.4, RecentActivityScore: 0.4},
		"near": {ImportanceScore: 0.3, InterestingnessScore: 0.3, RecentActivityScore: 0.3},
	}
	matrix := a.RelevanceMatrix(panes)

	c := NewCalculator(model.StrategyRelated)
	layout := c.Calculate(panes, analyses, 200, 50, matrix, model.LayoutAuto)

	if layout.Panes[0].ID != "main" {
		t.Fatalf("main pane = %s", layout.Panes[0].ID)
	}
	// near shares git vocabulary with main, so it outranks far in the side
	// column even though far has the higher combined score.
	if layout.Panes[1].ID != "near" || layout.Panes[2].ID != "far" {
		t.Errorf("side order = [%s %s], want [near far]", layout.Panes[1].ID, layout.Panes[2].ID)
	}
}

func makeScores(combined []float64) []PaneScore {
	scores := make([]PaneScore, len(combined))
	for i, c := range combined {
		scores[i] = PaneScore{ID: string(rune('a' + i)), Combined: c}
	}
	return scores
}
