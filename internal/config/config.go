package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the listen address and log level.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Addr returns the host:port pair for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LLMConfig configures the OpenAI-compatible chat and embeddings client.
// The API key is never stored in the file; only the name of the environment
// variable that carries it.
type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
	MaxConcurrent  int     `yaml:"max_concurrent"`
}

// Timeout returns the bounded per-call timeout for model invocations.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSecs) * time.Second
}

// IndexConfig locates the persisted vector index and sets retrieval policy.
type IndexConfig struct {
	Dir            string  `yaml:"dir"`
	K              int     `yaml:"k"`
	ScoreThreshold float64 `yaml:"score_threshold"`
}

// CacheConfig controls the analysis response cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxEntries int  `yaml:"max_entries"`
}

// SessionConfig controls session expiry and the follow-up question count.
type SessionConfig struct {
	TimeoutMinutes    int `yaml:"timeout_minutes"`
	SweepIntervalSecs int `yaml:"sweep_interval_secs"`
	MaxFollowups      int `yaml:"max_followup_questions"`
}

// Timeout returns the session time-to-live.
func (s SessionConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMinutes) * time.Minute
}

// SweepInterval returns the period of the background expiry sweep.
func (s SessionConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSecs) * time.Second
}

// APIConfig holds boundary policy: rate limits, CORS, websocket deadlines
// and the optional static frontend directory.
type APIConfig struct {
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	EnableCORS         bool     `yaml:"enable_cors"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	WSReadTimeoutSecs  int      `yaml:"ws_read_timeout_secs"`
	ThinkingDelayMs    int      `yaml:"thinking_delay_ms"`
	MaxBodyBytes       int64    `yaml:"max_body_bytes"`
	StaticDir          string   `yaml:"static_dir"`
}

// WSReadTimeout is the maximum wait for a websocket client's initial frame.
func (a APIConfig) WSReadTimeout() time.Duration {
	return time.Duration(a.WSReadTimeoutSecs) * time.Second
}

// ThinkingDelay paces the "thinking" status frame before the analysis frame.
func (a APIConfig) ThinkingDelay() time.Duration {
	return time.Duration(a.ThinkingDelayMs) * time.Millisecond
}

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Index   IndexConfig   `yaml:"index"`
	Cache   CacheConfig   `yaml:"cache"`
	Session SessionConfig `yaml:"session"`
	API     APIConfig     `yaml:"api"`
}

// Load reads a config from the given path.  A missing file yields the
// defaults; values present in the file override defaults field by field.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8000,
			LogLevel: "info",
		},
		LLM: LLMConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			APIKeyEnv:      "OPENROUTER_API_KEY",
			Model:          "meta-llama/llama-3-8b-instruct:free",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.1,
			MaxTokens:      512,
			TimeoutSecs:    30,
			MaxConcurrent:  4,
		},
		Index: IndexConfig{
			Dir:            "vector_index",
			K:              5,
			ScoreThreshold: 0.55,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 1024,
		},
		Session: SessionConfig{
			TimeoutMinutes:    30,
			SweepIntervalSecs: 300,
			MaxFollowups:      3,
		},
		API: APIConfig{
			RateLimitPerMinute: 10,
			EnableCORS:         true,
			AllowedOrigins:     []string{"http://localhost:3000", "http://localhost:8000"},
			WSReadTimeoutSecs:  30,
			ThinkingDelayMs:    300,
			MaxBodyBytes:       1 << 20,
			StaticDir:          "static",
		},
	}
}
