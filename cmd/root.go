package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/config"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
	"github.com/timvw/panefit/internal/reflow"
	"github.com/timvw/panefit/internal/scorer"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags. Empty values defer to the config file and defaults.
	flagMux       string
	flagStrategy  string
	flagLayout    string
	flagLLM       bool
	flagProvider  string
	flagModel     string
	flagBaseURL   string
	flagAPIKey    string
	flagMaxTokens int64
)

var rootCmd = &cobra.Command{
	Use:   "panefit",
	Short: "Content-aware layout optimizer for terminal multiplexer panes",
	Long: `panefit scores the content of terminal multiplexer panes and reshapes
the window so the most important panes get the most screen space.

Scoring is heuristic by default (entropy, activity, vocabulary); an LLM
can optionally blend in a semantic judgment. Layouts are applied through
swap and resize operations so running processes are never disturbed.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", envOrDefault("PANEFIT_MUX", ""), "terminal multiplexer: tmux (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagStrategy, "strategy", "", "scoring strategy: importance, entropy, activity, balanced, related")
	rootCmd.PersistentFlags().StringVar(&flagLayout, "layout", "", "layout type: auto, horizontal, vertical, tiled")
	rootCmd.PersistentFlags().BoolVar(&flagLLM, "llm", false, "blend LLM scores into the heuristics")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: anthropic, openai")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "LLM model name")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override LLM API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "override LLM API key")
	rootCmd.PersistentFlags().Int64Var(&flagMaxTokens, "max-tokens", 0, "max completion tokens for LLM scoring")
}

// loadConfig loads the config file and environment, then applies command
// line flag overrides on top. Flags always win.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagStrategy != "" {
		cfg.Strategy = flagStrategy
	}
	if flagLayout != "" {
		cfg.LayoutType = flagLayout
	}
	if flagLLM {
		cfg.LLMEnabled = true
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagMaxTokens > 0 {
		cfg.MaxTokens = flagMaxTokens
	}
	return cfg, nil
}

// getAdapter returns the configured or auto-detected multiplexer adapter
// with the configured capture history applied.
func getAdapter() (mux.Adapter, error) {
	var (
		adapter mux.Adapter
		err     error
	)
	if flagMux != "" {
		adapter, err = mux.FromName(flagMux)
	} else {
		adapter, err = mux.Detect()
	}
	if err != nil {
		return nil, err
	}
	if t, ok := adapter.(*mux.Tmux); ok {
		if cfg, cfgErr := loadConfig(); cfgErr == nil && cfg.HistoryLines > 0 {
			t.HistoryLines = cfg.HistoryLines
		}
	}
	return adapter, nil
}

// getScorer builds the LLM scorer for the configured provider.
func getScorer(cfg *config.Config) (scorer.Scorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set PANEFIT_API_KEY, ANTHROPIC_API_KEY, OPENAI_API_KEY, or AZURE_OPENAI_API_KEY")
	}

	// Azure AI Foundry wants the key in an "api-key" header on top of the
	// SDK's own auth header.
	extraHeaders := map[string]string{}
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || isAzureEndpoint(cfg.BaseURL) {
		extraHeaders["api-key"] = cfg.APIKey
	}

	switch cfg.Provider {
	case "anthropic":
		return scorer.NewAnthropicScorer(scorer.AnthropicConfig{
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			MaxTokens:    cfg.MaxTokens,
			ExtraHeaders: extraHeaders,
		}), nil
	case "openai":
		return scorer.NewOpenAIScorer(scorer.OpenAIConfig{
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			MaxTokens:    cfg.MaxTokens,
			ExtraHeaders: extraHeaders,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai)", cfg.Provider)
	}
}

// newBlender returns a score blender when LLM scoring is enabled, nil
// otherwise.
func newBlender(cfg *config.Config) (*scorer.Blender, error) {
	if !cfg.LLMEnabled {
		return nil, nil
	}
	s, err := getScorer(cfg)
	if err != nil {
		return nil, err
	}
	return &scorer.Blender{
		Scorer:   s,
		Cache:    scorer.NewScoreCache(cfg.CacheTTLDuration),
		Ratio:    cfg.BlendRatio,
		Timeout:  cfg.LLMTimeoutDuration,
		Parallel: cfg.Parallel,
	}, nil
}

// newEngine assembles a reflow engine from the resolved config.
func newEngine(cfg *config.Config, adapter mux.Adapter, blender *scorer.Blender) (*reflow.Engine, error) {
	strategy, err := model.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	layoutType, err := model.ParseLayoutType(cfg.LayoutType)
	if err != nil {
		return nil, err
	}
	return &reflow.Engine{
		Adapter:    adapter,
		Analyzer:   analyzer.New(),
		Blender:    blender,
		Strategy:   strategy,
		LayoutType: layoutType,
		MinWidth:   cfg.MinWidth,
		MinHeight:  cfg.MinHeight,
	}, nil
}

// isAzureEndpoint checks if a URL is an Azure endpoint.
func isAzureEndpoint(url string) bool {
	return strings.Contains(url, ".azure.com") || strings.Contains(url, ".azure.us")
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
