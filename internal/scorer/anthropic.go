package scorer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/timvw/panefit/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AnthropicScorer scores pane content using the Anthropic Messages API.
// Works with both direct Anthropic API and Azure AI Foundry.
type AnthropicScorer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicConfig holds configuration for the Anthropic scorer.
type AnthropicConfig struct {
	// BaseURL is the API endpoint (e.g., "https://resource.services.ai.azure.com/anthropic/v1").
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// Model is the model name (e.g., "claude-haiku-4-5").
	Model string
	// MaxTokens is the maximum number of output tokens.
	MaxTokens int64
	// ExtraHeaders are additional HTTP headers (e.g., "api-key" for Azure).
	ExtraHeaders map[string]string
}

// NewAnthropicScorer creates a new Anthropic scorer.
func NewAnthropicScorer(cfg AnthropicConfig) *AnthropicScorer {
	var opts []option.RequestOption

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	client := anthropic.NewClient(opts...)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &AnthropicScorer{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Provider returns "anthropic".
func (s *AnthropicScorer) Provider() string {
	return "anthropic"
}

// Model returns the model name.
func (s *AnthropicScorer) Model() string {
	return s.model
}

var scoreTracer = otel.Tracer("panefit/scorer")

// Score sends pane content to the Anthropic API and returns the judgment.
func (s *AnthropicScorer) Score(ctx context.Context, content string) (*model.LLMScore, error) {
	userMessage := UserPromptTemplate + content

	// GenAI generation span per the OTel GenAI semantic conventions.
	// Span name: "{operation} {model}".
	ctx, span := scoreTracer.Start(ctx, "chat "+s.model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", "anthropic"),
			attribute.String("gen_ai.request.model", s.model),
			attribute.Int64("gen_ai.request.max_tokens", s.maxTokens),

			// Langfuse-specific: ensure this shows as a "generation"
			attribute.String("langfuse.observation.type", "generation"),
		),
	)
	defer span.End()

	inputMessages := []map[string]string{
		{"role": "system", "content": SystemPrompt},
		{"role": "user", "content": userMessage},
	}
	if inputJSON, err := json.Marshal(inputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.input.messages", string(inputJSON)))
	}

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(userMessage),
			),
		},
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	if len(resp.Content) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("anthropic API returned empty response")
	}

	rawText := resp.Content[0].Text
	text := stripMarkdownFences(rawText)

	span.SetAttributes(
		attribute.String("gen_ai.response.model", s.model),
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.OutputTokens),
	)
	if string(resp.StopReason) != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{string(resp.StopReason)}))
	}

	outputMessages := []map[string]string{
		{"role": "assistant", "content": rawText},
	}
	if outputJSON, err := json.Marshal(outputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.output.messages", string(outputJSON)))
	}

	var score model.LLMScore
	if err := json.Unmarshal([]byte(text), &score); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	score.ImportanceScore = clampScore(score.ImportanceScore)
	score.InterestingnessScore = clampScore(score.InterestingnessScore)

	score.Usage = model.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}

	return &score, nil
}
