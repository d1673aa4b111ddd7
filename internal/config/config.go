// Package config loads panefit configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (PANEFIT_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .panefit.yaml in current directory
//  2. ~/.config/panefit/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all panefit configuration.
type Config struct {
	// Layout settings
	Strategy   string `yaml:"strategy"`    // importance, entropy, activity, balanced, related
	LayoutType string `yaml:"layout_type"` // auto, horizontal, vertical, tiled
	MinWidth   int    `yaml:"min_width"`
	MinHeight  int    `yaml:"min_height"`

	// LLM settings
	LLMEnabled bool    `yaml:"llm_enabled"`
	Provider   string  `yaml:"provider"` // anthropic, openai
	Model      string  `yaml:"model"`
	BaseURL    string  `yaml:"base_url"`
	APIKey     string  `yaml:"api_key"`
	MaxTokens  int64   `yaml:"max_tokens"`
	BlendRatio float64 `yaml:"blend_ratio"` // LLM weight when blending scores
	LLMTimeout string  `yaml:"llm_timeout"` // Go duration string, e.g. "15s"

	// Scan settings
	HistoryLines int `yaml:"history_lines"` // scrollback lines captured per pane
	Parallel     int `yaml:"parallel"`

	// Cross-window session settings
	RelevanceThreshold  float64 `yaml:"relevance_threshold"`
	ImportanceThreshold float64 `yaml:"importance_threshold"`
	ParkWindowName      string  `yaml:"park_window_name"`

	// Watch mode
	Refresh  string `yaml:"refresh"`   // Go duration string, e.g. "30s"
	CacheTTL string `yaml:"cache_ttl"` // Go duration string, e.g. "5m"

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	RefreshDuration    time.Duration `yaml:"-"`
	CacheTTLDuration   time.Duration `yaml:"-"`
	LLMTimeoutDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Strategy:            "balanced",
		LayoutType:          "auto",
		MinWidth:            20,
		MinHeight:           5,
		Provider:            "anthropic",
		Model:               "claude-haiku-4-5",
		MaxTokens:           1024,
		BlendRatio:          0.4,
		LLMTimeout:          "15s",
		HistoryLines:        100,
		Parallel:            4,
		RelevanceThreshold:  0.3,
		ImportanceThreshold: 0.2,
		ParkWindowName:      "parked",
		Refresh:             "30s",
		CacheTTL:            "5m",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	var err error
	cfg.RefreshDuration, err = parseDurationOrDisable(cfg.Refresh, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh interval %q: %w", cfg.Refresh, err)
	}
	cfg.CacheTTLDuration, err = parseDurationOrDisable(cfg.CacheTTL, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL %q: %w", cfg.CacheTTL, err)
	}
	cfg.LLMTimeoutDuration, err = parseDurationOrDisable(cfg.LLMTimeout, 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM timeout %q: %w", cfg.LLMTimeout, err)
	}

	return cfg, nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed. An empty path writes the default location.
func Save(cfg *Config, path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, ".config", "panefit", "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".panefit.yaml"); err == nil {
		return ".panefit.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "panefit", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Strategy != "" {
		cfg.Strategy = file.Strategy
	}
	if file.LayoutType != "" {
		cfg.LayoutType = file.LayoutType
	}
	if file.MinWidth > 0 {
		cfg.MinWidth = file.MinWidth
	}
	if file.MinHeight > 0 {
		cfg.MinHeight = file.MinHeight
	}
	if file.LLMEnabled {
		cfg.LLMEnabled = file.LLMEnabled
	}
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.BlendRatio > 0 {
		cfg.BlendRatio = file.BlendRatio
	}
	if file.LLMTimeout != "" {
		cfg.LLMTimeout = file.LLMTimeout
	}
	if file.HistoryLines > 0 {
		cfg.HistoryLines = file.HistoryLines
	}
	if file.Parallel > 0 {
		cfg.Parallel = file.Parallel
	}
	if file.RelevanceThreshold > 0 {
		cfg.RelevanceThreshold = file.RelevanceThreshold
	}
	if file.ImportanceThreshold > 0 {
		cfg.ImportanceThreshold = file.ImportanceThreshold
	}
	if file.ParkWindowName != "" {
		cfg.ParkWindowName = file.ParkWindowName
	}
	if file.Refresh != "" {
		cfg.Refresh = file.Refresh
	}
	if file.CacheTTL != "" {
		cfg.CacheTTL = file.CacheTTL
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("PANEFIT_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := os.Getenv("PANEFIT_LAYOUT_TYPE"); v != "" {
		cfg.LayoutType = v
	}
	if v := os.Getenv("PANEFIT_LLM_ENABLED"); v == "true" || v == "1" {
		cfg.LLMEnabled = true
	}
	if v := os.Getenv("PANEFIT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("PANEFIT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PANEFIT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("PANEFIT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PANEFIT_BLEND_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.BlendRatio = f
		}
	}
	if v := os.Getenv("PANEFIT_LLM_TIMEOUT"); v != "" {
		cfg.LLMTimeout = v
	}
	if v := os.Getenv("PANEFIT_REFRESH"); v != "" {
		cfg.Refresh = v
	}
	if v := os.Getenv("PANEFIT_CACHE_TTL"); v != "" {
		cfg.CacheTTL = v
	}
	if v := os.Getenv("PANEFIT_PARK_WINDOW"); v != "" {
		cfg.ParkWindowName = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// API key fallbacks
	if cfg.APIKey == "" {
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}

	// Azure base URL fallback
	if cfg.BaseURL == "" {
		if rn := os.Getenv("AZURE_RESOURCE_NAME"); rn != "" {
			switch cfg.Provider {
			case "anthropic":
				cfg.BaseURL = fmt.Sprintf("https://%s.services.ai.azure.com/anthropic/", rn)
			case "openai":
				cfg.BaseURL = fmt.Sprintf("https://%s.openai.azure.com/openai/v1", rn)
			}
		}
	}
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
