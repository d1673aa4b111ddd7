package scorer

import (
	"context"
	"sync"
	"time"

	"github.com/timvw/panefit/internal/model"
)

const (
	defaultBlendRatio = 0.5
	defaultTimeout    = 15 * time.Second
)

// Blender mixes LLM judgments into heuristic analysis results.
//
// blended = (1-ratio)·heuristic + ratio·llm, per score. Scorer failures
// and timeouts are swallowed at this boundary: the pane keeps its
// heuristic scores and the layout computation proceeds.
type Blender struct {
	Scorer Scorer
	Cache  *ScoreCache

	// Ratio is the LLM weight in [0,1]. Zero uses the default 0.5.
	Ratio float64

	// Timeout bounds each scoring call. Zero uses the default 15s.
	Timeout time.Duration

	// Parallel bounds concurrent scoring calls. Zero means 4.
	Parallel int
}

// Apply scores each pane and blends the results into analyses in place.
// Returns the number of panes that received an LLM contribution.
func (b *Blender) Apply(ctx context.Context, panes []model.PaneSnapshot, analyses map[string]model.AnalysisResult) int {
	if b.Scorer == nil || len(panes) == 0 {
		return 0
	}

	ratio := b.Ratio
	if ratio <= 0 {
		ratio = defaultBlendRatio
	}
	if ratio > 1 {
		ratio = 1
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	parallel := b.Parallel
	if parallel <= 0 {
		parallel = 4
	}

	var (
		mu      sync.Mutex
		blended int
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, parallel)

	for _, pane := range panes {
		if _, ok := analyses[pane.ID]; !ok {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(pane model.PaneSnapshot) {
			defer wg.Done()
			defer func() { <-sem }()

			score := b.score(ctx, pane, timeout)
			if score == nil {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			a := analyses[pane.ID]
			a.ImportanceScore = (1-ratio)*a.ImportanceScore + ratio*score.ImportanceScore
			a.InterestingnessScore = (1-ratio)*a.InterestingnessScore + ratio*score.InterestingnessScore
			a.Summary = score.Summary
			a.Topics = score.Topics
			analyses[pane.ID] = a
			blended++
		}(pane)
	}
	wg.Wait()

	return blended
}

// score runs one scoring call with the cache and timeout applied. Any
// failure returns nil.
func (b *Blender) score(ctx context.Context, pane model.PaneSnapshot, timeout time.Duration) *model.LLMScore {
	if b.Cache != nil {
		if cached, ok := b.Cache.Lookup(pane.ID, pane.Content); ok {
			return cached
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	score, err := b.Scorer.Score(ctx, pane.Content)
	if err != nil {
		return nil
	}
	if b.Cache != nil {
		b.Cache.Store(pane.ID, pane.Content, *score)
	}
	return score
}
