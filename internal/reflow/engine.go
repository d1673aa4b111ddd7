// Package reflow orchestrates one full reflow cycle: capture panes, score
// them, derive a target layout, plan the transform, and optionally apply it.
package reflow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/layout"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
	pfotel "github.com/timvw/panefit/internal/otel"
	"github.com/timvw/panefit/internal/scorer"
	"github.com/timvw/panefit/internal/transform"
)

var tracer = otel.Tracer("panefit/reflow")

// Engine holds everything one reflow cycle needs. Reused across cycles so
// the analyzer's change history and the score cache persist.
type Engine struct {
	Adapter  mux.Adapter
	Analyzer *analyzer.Analyzer

	// Blender mixes LLM scores into the heuristic ones; nil disables.
	Blender *scorer.Blender

	Strategy   model.Strategy
	LayoutType model.LayoutType
	MinWidth   int
	MinHeight  int

	Metrics *pfotel.Metrics
}

// PaneReport is the per-pane slice of a reflow result.
type PaneReport struct {
	ID              string  `json:"id"`
	Before          string  `json:"before"`
	After           string  `json:"after"`
	Importance      float64 `json:"importance"`
	Interestingness float64 `json:"interestingness"`
	Activity        float64 `json:"activity"`
	Summary         string  `json:"summary,omitempty"`
}

// Result reports one reflow cycle.
type Result struct {
	// Status is one of applied, calculated, skipped, failed.
	Status     string             `json:"status"`
	Message    string             `json:"message,omitempty"`
	Panes      []PaneReport       `json:"panes"`
	Operations []string           `json:"operations,omitempty"`
	Steps      []model.StepResult `json:"-"`
	Layout     model.WindowLayout `json:"layout"`
	LLMScored  int                `json:"llm_scored,omitempty"`
}

// Run executes one cycle against the given window (empty for the current
// one). With dryRun the plan is computed but nothing is applied.
func (e *Engine) Run(ctx context.Context, window string, dryRun bool) (*Result, error) {
	ctx, span := tracer.Start(ctx, "reflow",
		trace.WithAttributes(
			attribute.String("reflow.window", window),
			attribute.String("reflow.strategy", string(e.Strategy)),
			attribute.Bool("reflow.dry_run", dryRun),
		))
	defer span.End()

	if !e.Adapter.IsAvailable(ctx) {
		return nil, model.ErrAdapterUnavailable
	}

	panes, err := e.Adapter.Panes(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("listing panes: %w", err)
	}
	if len(panes) < 2 {
		e.Metrics.RecordReflow(ctx, "skipped")
		return &Result{
			Status:  "skipped",
			Message: "need at least 2 panes",
		}, nil
	}

	analyses := e.Analyzer.AnalyzePanes(panes)
	source := "heuristic"
	llmScored := 0
	if e.Blender != nil {
		llmScored = e.Blender.Apply(ctx, panes, analyses)
		if llmScored > 0 {
			source = "blended"
		}
	}
	for range panes {
		e.Metrics.RecordAnalysis(ctx, source)
	}

	matrix := e.Analyzer.RelevanceMatrix(panes)

	width, height, err := e.Adapter.WindowSize(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("reading window size: %w", err)
	}

	calc := layout.NewCalculator(e.Strategy)
	if e.MinWidth > 0 {
		calc.MinWidth = e.MinWidth
	}
	if e.MinHeight > 0 {
		calc.MinHeight = e.MinHeight
	}
	target := calc.Calculate(panes, analyses, width, height, matrix, e.LayoutType)

	plan := transform.Plan(panes, target)

	result := &Result{
		Status:     "calculated",
		Layout:     target,
		Operations: describeOps(plan),
		LLMScored:  llmScored,
	}

	if !dryRun {
		steps, ok := transform.Execute(ctx, plan, e.Adapter, window)
		result.Steps = steps
		for _, s := range steps {
			e.Metrics.RecordTransformStep(ctx, string(s.Step.Op), s.Err != nil)
		}
		if ok {
			result.Status = "applied"
		} else {
			result.Status = "failed"
			result.Message = "some transform steps failed"
		}
	}
	e.Metrics.RecordReflow(ctx, result.Status)

	for _, p := range panes {
		a := analyses[p.ID]
		report := PaneReport{
			ID:              p.ID,
			Before:          fmt.Sprintf("%dx%d", p.Width, p.Height),
			After:           "unchanged",
			Importance:      a.ImportanceScore,
			Interestingness: a.InterestingnessScore,
			Activity:        a.RecentActivityScore,
			Summary:         a.Summary,
		}
		if tp, ok := target.Pane(p.ID); ok {
			report.After = fmt.Sprintf("%dx%d", tp.Width, tp.Height)
		}
		result.Panes = append(result.Panes, report)
	}

	span.SetAttributes(
		attribute.Int("reflow.panes", len(panes)),
		attribute.Int("reflow.swaps", plan.SwapCount()),
		attribute.Int("reflow.llm_scored", llmScored),
		attribute.String("reflow.status", result.Status),
	)

	return result, nil
}

// describeOps renders a plan as compact operation strings, e.g.
// "swap(%1,%3)" and "resize(%2,100x24)".
func describeOps(plan model.TransformPlan) []string {
	ops := make([]string, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		ops = append(ops, s.String())
	}
	return ops
}
