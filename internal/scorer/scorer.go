// Package scorer provides optional LLM-based semantic scoring of pane
// content. The heuristic analyzer always runs; a scorer only blends its
// judgment on top, and any scorer failure leaves the heuristic scores
// untouched.
package scorer

import (
	"context"
	"strings"

	"github.com/timvw/panefit/internal/model"
)

// Scorer sends pane content to an LLM and returns a semantic score.
type Scorer interface {
	// Score sends the pane content to an LLM and returns its judgment.
	Score(ctx context.Context, content string) (*model.LLMScore, error)

	// Provider returns the provider name (e.g., "anthropic", "openai").
	Provider() string

	// Model returns the model name used for scoring.
	Model() string
}

// stripMarkdownFences removes a surrounding ```json ... ``` (or plain
// ```) fence from an LLM response. Models sometimes wrap JSON output in a
// code fence despite instructions not to.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "" etc.).
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// clampScore forces a model-reported score into [0,1].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
