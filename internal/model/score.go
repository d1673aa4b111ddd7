package model

// TokenUsage captures LLM token consumption for a single scoring call.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// LLMScore is the semantic judgment an external scorer returns for one
// pane's content. Scores lie in [0,1] and are blended into the heuristic
// scores by the caller; they never replace them outright.
type LLMScore struct {
	ImportanceScore      float64  `json:"importance_score"`
	InterestingnessScore float64  `json:"interestingness_score"`
	Summary              string   `json:"summary"`
	Topics               []string `json:"topics"`

	Usage TokenUsage `json:"-"`
}
