package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "panefit"

// Metrics holds all OTEL metric instruments for panefit.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// LLM token counters (partitioned by provider + model via attributes)
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter

	// Score cache counters
	ScoreCacheHits   metric.Int64Counter
	ScoreCacheMisses metric.Int64Counter

	// Pipeline counters
	Analyses       metric.Int64Counter // partitioned by scoring source: heuristic, blended
	Reflows        metric.Int64Counter // partitioned by status: applied, dry_run, skipped, failed
	TransformSteps metric.Int64Counter // partitioned by op + status
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.ScoreCacheHits, err = meter.Int64Counter("score_cache.hits",
		metric.WithDescription("Number of score cache hits (pane content unchanged, reused previous LLM score)"))
	if err != nil {
		return nil, err
	}

	m.ScoreCacheMisses, err = meter.Int64Counter("score_cache.misses",
		metric.WithDescription("Number of score cache misses (content changed, TTL expired, or first scoring)"))
	if err != nil {
		return nil, err
	}

	m.Analyses, err = meter.Int64Counter("analyses.total",
		metric.WithDescription("Total pane analyses partitioned by scoring source (heuristic, blended)"))
	if err != nil {
		return nil, err
	}

	m.Reflows, err = meter.Int64Counter("reflows.total",
		metric.WithDescription("Total reflow runs partitioned by status (applied, dry_run, skipped, failed)"))
	if err != nil {
		return nil, err
	}

	m.TransformSteps, err = meter.Int64Counter("transform.steps.total",
		metric.WithDescription("Total executed transform steps partitioned by op and status"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTokens records LLM token usage on the metric counters.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
}

// RecordCacheHit records a score cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.ScoreCacheHits.Add(ctx, 1)
}

// RecordCacheMiss records a score cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.ScoreCacheMisses.Add(ctx, 1)
}

// RecordAnalysis records a pane analysis with its scoring source.
func (m *Metrics) RecordAnalysis(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.Analyses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("analysis.source", source),
	))
}

// RecordReflow records a reflow run with its outcome.
func (m *Metrics) RecordReflow(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.Reflows.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reflow.status", status),
	))
}

// RecordTransformStep records one executed transform step.
func (m *Metrics) RecordTransformStep(ctx context.Context, op string, failed bool) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "error"
	}
	m.TransformSteps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step.op", op),
		attribute.String("step.status", status),
	))
}
