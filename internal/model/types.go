// Package model defines the core data types shared by the analyzer,
// layout calculator, and transform planner.
package model

import (
	"errors"
	"fmt"
)

// ErrNoPanes is returned when an operation receives an empty pane set.
var ErrNoPanes = errors.New("no panes provided")

// ErrAdapterUnavailable is returned when the multiplexer adapter cannot
// reach a running multiplexer (e.g., not inside a tmux session).
var ErrAdapterUnavailable = errors.New("multiplexer adapter unavailable")

// Strategy is the scoring-combination policy used to rank panes.
type Strategy string

const (
	StrategyImportance Strategy = "importance"
	StrategyEntropy    Strategy = "entropy"
	StrategyActivity   Strategy = "activity"
	StrategyBalanced   Strategy = "balanced"
	StrategyRelated    Strategy = "related"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyImportance, StrategyEntropy, StrategyActivity, StrategyBalanced, StrategyRelated:
		return Strategy(s), nil
	case "":
		return StrategyBalanced, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (supported: importance, entropy, activity, balanced, related)", s)
	}
}

// LayoutType is the geometric arrangement policy.
type LayoutType string

const (
	LayoutAuto       LayoutType = "auto"
	LayoutHorizontal LayoutType = "horizontal"
	LayoutVertical   LayoutType = "vertical"
	LayoutTiled      LayoutType = "tiled"
)

// ParseLayoutType validates a layout type name.
func ParseLayoutType(s string) (LayoutType, error) {
	switch LayoutType(s) {
	case LayoutAuto, LayoutHorizontal, LayoutVertical, LayoutTiled:
		return LayoutType(s), nil
	case "":
		return LayoutAuto, nil
	default:
		return "", fmt.Errorf("unknown layout type %q (supported: auto, horizontal, vertical, tiled)", s)
	}
}

// PaneSnapshot is one pane as captured by the adapter in a single polling
// cycle. Immutable once captured.
type PaneSnapshot struct {
	// ID is the pane identifier, unique within one analysis batch
	// (e.g., "%3" for tmux).
	ID string `json:"id"`
	// Content is the captured pane text.
	Content string `json:"content"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Active  bool   `json:"active"`
	// Title is the pane title. For cross-window snapshots the adapter
	// encodes the window id as "windowID:title".
	Title string `json:"title"`
	// Command is the current command running in the pane.
	Command string `json:"command"`
}

// AnalysisResult holds the derived metrics for a single pane.
// All *_score fields lie in [0,1].
type AnalysisResult struct {
	PaneID string `json:"pane_id"`

	CharEntropy float64 `json:"char_entropy"`
	WordEntropy float64 `json:"word_entropy"`

	WordCount          int     `json:"word_count"`
	LineCount          int     `json:"line_count"`
	CharCount          int     `json:"char_count"`
	UniqueWordRatio    float64 `json:"unique_word_ratio"`
	VocabularyRichness float64 `json:"vocabulary_richness"`
	AvgWordLength      float64 `json:"avg_word_length"`

	SurprisalScore       float64 `json:"surprisal_score"`
	RecentActivityScore  float64 `json:"recent_activity_score"`
	ImportanceScore      float64 `json:"importance_score"`
	InterestingnessScore float64 `json:"interestingness_score"`

	// ContentHash is a short deterministic digest used for change
	// detection only, not cryptographic integrity.
	ContentHash string `json:"content_hash"`

	// Filled only when an external scorer contributed.
	Summary string   `json:"summary,omitempty"`
	Topics  []string `json:"topics,omitempty"`
}

// RelevanceResult is the pairwise similarity between two panes.
// Symmetric: the result for (A,B) equals the result for (B,A).
type RelevanceResult struct {
	PaneID1           string   `json:"pane_id_1"`
	PaneID2           string   `json:"pane_id_2"`
	SharedKeywords    []string `json:"shared_keywords"`
	JaccardSimilarity float64  `json:"jaccard_similarity"`
	TopicSimilarity   float64  `json:"topic_similarity"`
	CombinedScore     float64  `json:"combined_score"`
}

// PaneLayout is the calculated geometry for a single pane.
type PaneLayout struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Area returns width × height.
func (p PaneLayout) Area() int { return p.Width * p.Height }

// Right returns the x coordinate just past the pane's right edge.
func (p PaneLayout) Right() int { return p.X + p.Width }

// Bottom returns the y coordinate just past the pane's bottom edge.
func (p PaneLayout) Bottom() int { return p.Y + p.Height }

// WindowLayout is the complete target geometry for one window.
// Panes are ordered by descending combined score (most important first).
type WindowLayout struct {
	WindowWidth  int          `json:"window_width"`
	WindowHeight int          `json:"window_height"`
	Panes        []PaneLayout `json:"panes"`
	Strategy     Strategy     `json:"strategy"`
}

// Pane returns the layout for the given pane id.
func (l *WindowLayout) Pane(id string) (PaneLayout, bool) {
	for _, p := range l.Panes {
		if p.ID == id {
			return p, true
		}
	}
	return PaneLayout{}, false
}
