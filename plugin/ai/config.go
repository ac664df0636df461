package ai

import (
	"time"

	"github.com/pkg/errors"

	"github.com/soleshop/soleshop/internal/profile"
)

// Config holds the text-generation provider configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		ChatModel:  "gpt-4o-mini",
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	}
}

// NewConfigFromProfile creates a generation config from the server profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}
	if p.AIChatModel != "" {
		cfg.ChatModel = p.AIChatModel
	}
	cfg.APIKey = p.AIAPIKey
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("API key is required, set SOLESHOP_AI_API_KEY")
	}
	if c.ChatModel == "" {
		return errors.New("chat model is required")
	}
	return nil
}
