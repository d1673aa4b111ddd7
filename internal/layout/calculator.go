// Package layout turns per-pane analysis scores into a target window
// geometry under a chosen strategy.
package layout

import (
	"sort"

	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/model"
)

const goldenRatio = 1.618

// Default minimum pane dimensions.
const (
	DefaultMinWidth  = 20
	DefaultMinHeight = 5
)

// activeBoost is added to the active pane's importance before strategy
// combination, capped at 1.
const activeBoost = 0.2

// PaneScore is the aggregated per-pane score used for sizing.
type PaneScore struct {
	ID              string
	Importance      float64
	Interestingness float64
	Activity        float64
	Combined        float64
}

// Calculator computes target layouts.
type Calculator struct {
	Strategy  model.Strategy
	MinWidth  int
	MinHeight int
}

// NewCalculator creates a Calculator with default minimum pane sizes.
func NewCalculator(strategy model.Strategy) *Calculator {
	return &Calculator{
		Strategy:  strategy,
		MinWidth:  DefaultMinWidth,
		MinHeight: DefaultMinHeight,
	}
}

// Scores combines analysis results into per-pane scores under the
// calculator's strategy and normalizes them to sum to 1. Panes without an
// analysis result score a neutral 0.5 on every axis.
func (c *Calculator) Scores(panes []model.PaneSnapshot, analyses map[string]model.AnalysisResult) []PaneScore {
	scores := make([]PaneScore, 0, len(panes))

	for _, pane := range panes {
		importance, interestingness, activity := 0.5, 0.5, 0.5
		if a, ok := analyses[pane.ID]; ok {
			importance = a.ImportanceScore
			interestingness = a.InterestingnessScore
			activity = a.RecentActivityScore
		}

		if pane.Active {
			importance = min1(importance + activeBoost)
		}

		var combined float64
		switch c.Strategy {
		case model.StrategyImportance:
			combined = importance
		case model.StrategyEntropy:
			combined = interestingness
		case model.StrategyActivity:
			combined = activity
		case model.StrategyRelated:
			combined = (importance + interestingness + activity) / 3
		default:
			// balanced
			combined = 0.4*importance + 0.3*interestingness + 0.3*activity
		}

		scores = append(scores, PaneScore{
			ID:              pane.ID,
			Importance:      importance,
			Interestingness: interestingness,
			Activity:        activity,
			Combined:        combined,
		})
	}

	total := 0.0
	for _, s := range scores {
		total += s.Combined
	}
	if total > 0 {
		for i := range scores {
			scores[i].Combined /= total
		}
	}

	return scores
}

// Distribute allocates totalSize across scores proportionally to their
// normalized combined score, honoring minSize per pane. When n·minSize
// exceeds the total, the space degrades to an equal split. Rounding
// leftover goes to the highest-scoring pane so the sum is exactly totalSize.
func Distribute(scores []PaneScore, totalSize, minSize int) []int {
	n := len(scores)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []int{totalSize}
	}

	if minSize*n >= totalSize {
		sizes := make([]int, n)
		for i := range sizes {
			sizes[i] = totalSize / n
		}
		return sizes
	}

	remaining := totalSize - minSize*n
	sizes := make([]int, n)
	sum := 0
	maxIdx := 0
	for i, s := range scores {
		sizes[i] = minSize + int(float64(remaining)*s.Combined)
		sum += sizes[i]
		if s.Combined > scores[maxIdx].Combined {
			maxIdx = i
		}
	}
	if diff := totalSize - sum; diff != 0 {
		sizes[maxIdx] += diff
	}
	return sizes
}

// Calculate produces the target layout for the given panes.
// The relevance matrix may be nil; it is only consulted for the related
// strategy. layoutType auto picks an arrangement from pane count and
// window aspect ratio.
func (c *Calculator) Calculate(
	panes []model.PaneSnapshot,
	analyses map[string]model.AnalysisResult,
	windowWidth, windowHeight int,
	matrix analyzer.RelevanceMatrix,
	layoutType model.LayoutType,
) model.WindowLayout {
	scores := c.Scores(panes, analyses)

	var layouts []model.PaneLayout
	switch layoutType {
	case model.LayoutHorizontal:
		layouts = c.horizontal(scores, windowWidth, windowHeight)
	case model.LayoutVertical:
		layouts = c.vertical(scores, windowWidth, windowHeight)
	case model.LayoutTiled:
		layouts = c.tiled(scores, windowWidth, windowHeight)
	default:
		if len(panes) == 2 {
			aspect := float64(windowWidth) / float64(windowHeight)
			if aspect > 1.5 {
				layouts = c.horizontal(scores, windowWidth, windowHeight)
			} else {
				layouts = c.vertical(scores, windowWidth, windowHeight)
			}
		} else if c.Strategy == model.StrategyRelated && matrix != nil {
			layouts = c.related(scores, matrix, windowWidth, windowHeight)
		} else {
			layouts = c.tiled(scores, windowWidth, windowHeight)
		}
	}

	return model.WindowLayout{
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		Panes:        layouts,
		Strategy:     c.Strategy,
	}
}

// horizontal places panes side by side, highest score leftmost, each at
// full window height.
func (c *Calculator) horizontal(scores []PaneScore, windowWidth, windowHeight int) []model.PaneLayout {
	ordered := sortByCombined(scores)
	widths := Distribute(ordered, windowWidth, c.MinWidth)

	layouts := make([]model.PaneLayout, 0, len(ordered))
	x := 0
	for i, s := range ordered {
		layouts = append(layouts, model.PaneLayout{
			ID:     s.ID,
			X:      x,
			Y:      0,
			Width:  widths[i],
			Height: windowHeight,
		})
		x += widths[i]
	}
	return layouts
}

// vertical stacks panes top to bottom, highest score first, full width.
func (c *Calculator) vertical(scores []PaneScore, windowWidth, windowHeight int) []model.PaneLayout {
	ordered := sortByCombined(scores)
	heights := Distribute(ordered, windowHeight, c.MinHeight)

	layouts := make([]model.PaneLayout, 0, len(ordered))
	y := 0
	for i, s := range ordered {
		layouts = append(layouts, model.PaneLayout{
			ID:     s.ID,
			X:      0,
			Y:      y,
			Width:  windowWidth,
			Height: heights[i],
		})
		y += heights[i]
	}
	return layouts
}

// tiled gives the top scorer a golden-ratio main column at full height and
// stacks the rest in the residual column. Falls back to horizontal for a
// single pane.
func (c *Calculator) tiled(scores []PaneScore, windowWidth, windowHeight int) []model.PaneLayout {
	if len(scores) <= 1 {
		return c.horizontal(scores, windowWidth, windowHeight)
	}
	return c.tiledOrdered(sortByCombined(scores), windowWidth, windowHeight)
}

// tiledOrdered is the tiled placement for an already-ordered score list
// (ordered[0] becomes the main pane).
func (c *Calculator) tiledOrdered(ordered []PaneScore, windowWidth, windowHeight int) []model.PaneLayout {
	mainWidth := int(float64(windowWidth) / goldenRatio)
	sideWidth := windowWidth - mainWidth

	layouts := []model.PaneLayout{{
		ID:     ordered[0].ID,
		X:      0,
		Y:      0,
		Width:  mainWidth,
		Height: windowHeight,
	}}

	side := ordered[1:]
	heights := Distribute(side, windowHeight, c.MinHeight)
	y := 0
	for i, s := range side {
		layouts = append(layouts, model.PaneLayout{
			ID:     s.ID,
			X:      mainWidth,
			Y:      y,
			Width:  sideWidth,
			Height: heights[i],
		})
		y += heights[i]
	}
	return layouts
}

// related orders the non-top panes by descending relevance to the top
// scorer, then applies the tiled placement. Ties keep combined-score order.
func (c *Calculator) related(scores []PaneScore, matrix analyzer.RelevanceMatrix, windowWidth, windowHeight int) []model.PaneLayout {
	if len(scores) <= 2 {
		return c.tiled(scores, windowWidth, windowHeight)
	}

	ordered := sortByCombined(scores)
	main := ordered[0]

	rest := make([]PaneScore, len(ordered)-1)
	copy(rest, ordered[1:])
	relTo := func(s PaneScore) float64 {
		if r, ok := matrix.Get(main.ID, s.ID); ok {
			return r.CombinedScore
		}
		return 0
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return relTo(rest[i]) > relTo(rest[j])
	})

	reordered := append([]PaneScore{main}, rest...)
	return c.tiledOrdered(reordered, windowWidth, windowHeight)
}

// sortByCombined returns a copy sorted by descending combined score.
func sortByCombined(scores []PaneScore) []PaneScore {
	ordered := make([]PaneScore, len(scores))
	copy(ordered, scores)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Combined > ordered[j].Combined
	})
	return ordered
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
