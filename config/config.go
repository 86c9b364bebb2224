// Package config provides configuration loading and management for Prospectus.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Extraction modes for the scraper.
const (
	ExtractModeText        = "text"
	ExtractModeMarkdown    = "markdown"
	ExtractModeReadability = "readability"
)

// Config represents the complete Prospectus configuration
type Config struct {
	Scraper ScraperConfig `yaml:"scraper"`
	LLM     LLMConfig     `yaml:"llm"`
	Export  ExportConfig  `yaml:"export"`
}

// ScraperConfig configures page fetching, caching, and content extraction
type ScraperConfig struct {
	// CacheTTL is how long a fetched page stays valid in the cache
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// MaxRetries is the attempt cap for a single page fetch
	MaxRetries int `yaml:"max_retries"`
	// RequestTimeout is the per-attempt HTTP timeout
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// MaxContentLength is the per-page truncation bound in characters
	MaxContentLength int `yaml:"max_content_length"`
	// MaxAggregatedLength is the whole-buffer truncation bound in bytes
	MaxAggregatedLength int `yaml:"max_aggregated_length"`
	// MaxBodySize caps how many bytes of an HTTP body are read
	MaxBodySize int64 `yaml:"max_body_size"`
	// UserAgent is sent with every page request
	UserAgent string `yaml:"user_agent"`
	// ExtractMode selects how page text is produced: text, markdown, or readability
	ExtractMode string `yaml:"extract_mode"`
	// AllowPrivateHosts permits fetching localhost and private-range addresses
	AllowPrivateHosts bool `yaml:"allow_private_hosts"`
	// ExcludeLinks holds glob patterns; matching links never reach selection
	ExcludeLinks []string `yaml:"exclude_links"`
}

// LLMConfig configures generation backend defaults
type LLMConfig struct {
	// DefaultModel is the model key used when the caller picks none
	DefaultModel string `yaml:"default_model"`
	// Temperature controls randomness (0.0-1.0)
	Temperature float64 `yaml:"temperature"`
	// MaxTokens is the generation token budget
	MaxTokens int `yaml:"max_tokens"`
	// MaxAttempts is the retry cap for a single endpoint
	MaxAttempts int `yaml:"max_attempts"`
	// BackoffBase is the initial retry delay
	BackoffBase time.Duration `yaml:"backoff_base"`
}

// ExportConfig configures brochure export
type ExportConfig struct {
	// OutputDir is where exported brochures are written
	OutputDir string `yaml:"output_dir"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			CacheTTL:            5 * time.Minute,
			MaxRetries:          3,
			RequestTimeout:      10 * time.Second,
			MaxContentLength:    2000,
			MaxAggregatedLength: 5000,
			MaxBodySize:         5 * 1024 * 1024,
			UserAgent:           "Mozilla/5.0 (compatible; prospectus/0.1)",
			ExtractMode:         ExtractModeText,
			AllowPrivateHosts:   false,
			ExcludeLinks: []string{
				"**/privacy*",
				"**/terms*",
			},
		},
		LLM: LLMConfig{
			DefaultModel: "gemini-2.5-flash",
			Temperature:  0.7,
			MaxTokens:    2000,
			MaxAttempts:  3,
			BackoffBase:  2 * time.Second,
		},
		Export: ExportConfig{
			OutputDir: "exports",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Scraper.CacheTTL <= 0 {
		return fmt.Errorf("scraper.cache_ttl must be positive")
	}
	if c.Scraper.MaxRetries < 1 {
		return fmt.Errorf("scraper.max_retries must be at least 1")
	}
	if c.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be positive")
	}
	if c.Scraper.MaxContentLength <= 0 {
		return fmt.Errorf("scraper.max_content_length must be positive")
	}
	if c.Scraper.MaxAggregatedLength < c.Scraper.MaxContentLength {
		return fmt.Errorf("scraper.max_aggregated_length must be at least max_content_length")
	}
	if c.Scraper.MaxBodySize <= 0 {
		return fmt.Errorf("scraper.max_body_size must be positive")
	}
	switch c.Scraper.ExtractMode {
	case ExtractModeText, ExtractModeMarkdown, ExtractModeReadability:
	default:
		return fmt.Errorf("scraper.extract_mode must be one of text, markdown, readability")
	}
	for _, pattern := range c.Scraper.ExcludeLinks {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("scraper.exclude_links: invalid pattern %q", pattern)
		}
	}
	if c.LLM.DefaultModel == "" {
		return fmt.Errorf("llm.default_model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("llm.temperature must be between 0 and 1")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be at least 1")
	}
	if c.LLM.BackoffBase <= 0 {
		return fmt.Errorf("llm.backoff_base must be positive")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Scraper
	if other.Scraper.CacheTTL != 0 {
		c.Scraper.CacheTTL = other.Scraper.CacheTTL
	}
	if other.Scraper.MaxRetries != 0 {
		c.Scraper.MaxRetries = other.Scraper.MaxRetries
	}
	if other.Scraper.RequestTimeout != 0 {
		c.Scraper.RequestTimeout = other.Scraper.RequestTimeout
	}
	if other.Scraper.MaxContentLength != 0 {
		c.Scraper.MaxContentLength = other.Scraper.MaxContentLength
	}
	if other.Scraper.MaxAggregatedLength != 0 {
		c.Scraper.MaxAggregatedLength = other.Scraper.MaxAggregatedLength
	}
	if other.Scraper.MaxBodySize != 0 {
		c.Scraper.MaxBodySize = other.Scraper.MaxBodySize
	}
	if other.Scraper.UserAgent != "" {
		c.Scraper.UserAgent = other.Scraper.UserAgent
	}
	if other.Scraper.ExtractMode != "" {
		c.Scraper.ExtractMode = other.Scraper.ExtractMode
	}
	if other.Scraper.AllowPrivateHosts {
		c.Scraper.AllowPrivateHosts = true
	}
	if len(other.Scraper.ExcludeLinks) > 0 {
		c.Scraper.ExcludeLinks = other.Scraper.ExcludeLinks
	}

	// LLM
	if other.LLM.DefaultModel != "" {
		c.LLM.DefaultModel = other.LLM.DefaultModel
	}
	if other.LLM.Temperature != 0 {
		c.LLM.Temperature = other.LLM.Temperature
	}
	if other.LLM.MaxTokens != 0 {
		c.LLM.MaxTokens = other.LLM.MaxTokens
	}
	if other.LLM.MaxAttempts != 0 {
		c.LLM.MaxAttempts = other.LLM.MaxAttempts
	}
	if other.LLM.BackoffBase != 0 {
		c.LLM.BackoffBase = other.LLM.BackoffBase
	}

	// Export
	if other.Export.OutputDir != "" {
		c.Export.OutputDir = other.Export.OutputDir
	}
}
