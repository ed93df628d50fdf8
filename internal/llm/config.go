package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the LLM backend used for item authoring.
type Config struct {
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	OpenRouter ProviderConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// ProviderConfig holds the credentials and endpoint of one backend.
// Model accepts a friendly alias or a raw model id. An empty BaseURL
// means the vendor's public endpoint.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		// Whole catalogs take longer than a single question.
		Timeout: 90 * time.Second,
	}
}

// discoveryOrder lists the vendor key variables probed by DiscoverConfig.
var discoveryOrder = []struct {
	env      string
	provider string
}{
	{"GEMINI_API_KEY", ProviderGemini},
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// DiscoverConfig fills in the first vendor whose standard API key variable
// is set. It returns false when none is.
func DiscoverConfig(base Config) (Config, bool) {
	for _, d := range discoveryOrder {
		key := os.Getenv(d.env)
		if key == "" {
			continue
		}
		base.Provider = d.provider
		base.provider(d.provider).APIKey = key
		return base, true
	}
	return base, false
}

// Selected returns the settings of the configured provider, or nil for
// mock and unknown providers.
func (c *Config) Selected() *ProviderConfig {
	return c.provider(c.Provider)
}

func (c *Config) provider(name string) *ProviderConfig {
	switch name {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	p := c.Selected()
	if p == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if p.APIKey == "" {
		return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
	}
	return nil
}
