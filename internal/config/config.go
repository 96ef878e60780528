package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/money-manager/txnparse/internal/normalize"
)

// FileName is the config file at the root of a txnparse repo.
const FileName = "txnparse.yaml"

// Config represents the top-level txnparse.yaml configuration.
type Config struct {
	Parser     ParserConfig     `yaml:"parser"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	LLM        LLMConfig        `yaml:"llm"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Git        GitConfig        `yaml:"git"`
}

// ParserConfig tunes the pattern normalizer.
type ParserConfig struct {
	DebitKeywords   []string `yaml:"debit_keywords,omitempty"`
	CreditKeywords  []string `yaml:"credit_keywords,omitempty"`
	AmbiguityMargin float64  `yaml:"ambiguity_margin"`
}

// ThresholdsConfig controls ledger status and batch filtering.
type ThresholdsConfig struct {
	AutoConfirm   int `yaml:"auto_confirm"`   // confidence at or above which entries skip review
	MinConfidence int `yaml:"min_confidence"` // batch results below this are dropped
}

// LLMConfig controls the Gemini fallback.
type LLMConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Attempts       int    `yaml:"attempts"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GitConfig controls commits of ledger changes.
type GitConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a txnparse.yaml file from disk. Fields missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new repo.
func Default() *Config {
	def := normalize.DefaultConfig()
	return &Config{
		Parser: ParserConfig{
			DebitKeywords:   def.DebitKeywords,
			CreditKeywords:  def.CreditKeywords,
			AmbiguityMargin: def.AmbiguityMargin,
		},
		Thresholds: ThresholdsConfig{
			AutoConfirm:   85,
			MinConfidence: 50,
		},
		LLM: LLMConfig{
			Enabled:        false,
			Model:          "gemini-2.5-flash",
			APIKeyEnv:      "GEMINI_API_KEY",
			TimeoutSeconds: 8,
			Attempts:       2,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			Enabled:     true,
			AuthorName:  "txnparse",
			AuthorEmail: "txnparse@localhost",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Thresholds.AutoConfirm < 0 || c.Thresholds.AutoConfirm > 100 {
		return fmt.Errorf("thresholds.auto_confirm must be within 0..100, got %d", c.Thresholds.AutoConfirm)
	}
	if c.Thresholds.MinConfidence < 0 || c.Thresholds.MinConfidence > 100 {
		return fmt.Errorf("thresholds.min_confidence must be within 0..100, got %d", c.Thresholds.MinConfidence)
	}
	if c.Parser.AmbiguityMargin < 0 {
		return fmt.Errorf("parser.ambiguity_margin must not be negative, got %g", c.Parser.AmbiguityMargin)
	}
	if c.LLM.Attempts < 0 || c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.attempts and llm.timeout_seconds must not be negative")
	}
	return nil
}

// Normalizer returns the normalizer settings.
func (c *Config) Normalizer() normalize.Config {
	return normalize.Config{
		DebitKeywords:   c.Parser.DebitKeywords,
		CreditKeywords:  c.Parser.CreditKeywords,
		AmbiguityMargin: c.Parser.AmbiguityMargin,
	}
}

// Timeout returns the per-attempt LLM timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// APIKey reads the LLM API key from the configured environment variable.
func (c LLMConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}
