// Package config loads settings from flags, EASYPRACTICE_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/easypractice/internal/llm"
	"github.com/abhisek/easypractice/internal/locale"
	"github.com/abhisek/easypractice/internal/logger"
	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/store"
)

const EnvPrefix = "EASYPRACTICE"

// HistoryLimits are the page sizes offered for session history.
var HistoryLimits = []int{10, 20, 30, 40, 50}

type Config struct {
	DB           string
	Language     string
	Coverage     int
	HistoryLimit int
	PoolSize     int
	RecentLimit  int

	Log         logger.Options
	ManifestURL string // empty means the embedded catalogs

	LLM llm.Config

	// File is the config file that was read, if any.
	File string
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("db", "")
	v.SetDefault("language", locale.English)
	v.SetDefault("coverage", queue.DefaultCoverage)
	v.SetDefault("history_limit", HistoryLimits[0])
	v.SetDefault("pool_size", queue.DefaultPoolSize)
	v.SetDefault("recent_limit", queue.DefaultRecentLimit)
	v.SetDefault("log.mode", "production")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("catalog.manifest_url", "")

	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	for name, p := range map[string]llm.ProviderConfig{
		llm.ProviderAnthropic:  d.Anthropic,
		llm.ProviderOpenAI:     d.OpenAI,
		llm.ProviderGemini:     d.Gemini,
		llm.ProviderOpenRouter: d.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", "")
		v.SetDefault("llm."+name+".model", p.Model)
		v.SetDefault("llm."+name+".base_url", p.BaseURL)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags maps persistent command flags onto their config keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, flag := range map[string]string{
		"db":        "db",
		"language":  "lang",
		"log.level": "log-level",
		"log.file":  "log-file",
		"log.mode":  "log-mode",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}
	return nil
}

// Load reads file, or config.yaml from the default directory when file is
// empty, and returns the validated settings. A missing default file is not
// an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DB:           v.GetString("db"),
		Language:     v.GetString("language"),
		Coverage:     v.GetInt("coverage"),
		HistoryLimit: v.GetInt("history_limit"),
		PoolSize:     v.GetInt("pool_size"),
		RecentLimit:  v.GetInt("recent_limit"),
		Log: logger.Options{
			Mode:  v.GetString("log.mode"),
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		ManifestURL: v.GetString("catalog.manifest_url"),
		LLM:         llmConfig(v),
		File:        v.ConfigFileUsed(),
	}

	if cfg.DB == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
		cfg.DB = p
	} else if err := store.EnsureDir(cfg.DB); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func llmConfig(v *viper.Viper) llm.Config {
	provider := func(name string) llm.ProviderConfig {
		return llm.ProviderConfig{
			APIKey:  v.GetString("llm." + name + ".api_key"),
			Model:   v.GetString("llm." + name + ".model"),
			BaseURL: v.GetString("llm." + name + ".base_url"),
		}
	}
	return llm.Config{
		Provider:   v.GetString("llm.provider"),
		Anthropic:  provider(llm.ProviderAnthropic),
		OpenAI:     provider(llm.ProviderOpenAI),
		Gemini:     provider(llm.ProviderGemini),
		OpenRouter: provider(llm.ProviderOpenRouter),
		Retry: llm.RetryConfig{
			MaxAttempts: v.GetInt("llm.retry.max_attempts"),
			InitialWait: v.GetDuration("llm.retry.initial_wait"),
			MaxWait:     v.GetDuration("llm.retry.max_wait"),
			Multiplier:  v.GetFloat64("llm.retry.multiplier"),
		},
		Timeout: v.GetDuration("llm.timeout"),
	}
}

// Validate rejects values outside the choices offered in the UI.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(queue.CoverageOptions, c.Coverage) {
		errs = append(errs, fmt.Errorf("coverage must be one of %v, got %d", queue.CoverageOptions, c.Coverage))
	}
	if !slices.Contains(HistoryLimits, c.HistoryLimit) {
		errs = append(errs, fmt.Errorf("history_limit must be one of %v, got %d", HistoryLimits, c.HistoryLimit))
	}
	if !locale.Valid(c.Language) {
		errs = append(errs, fmt.Errorf("language must be one of %v, got %q", locale.Supported(), c.Language))
	}
	if c.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("pool_size must be positive, got %d", c.PoolSize))
	}
	if c.RecentLimit < 0 {
		errs = append(errs, fmt.Errorf("recent_limit must not be negative, got %d", c.RecentLimit))
	}
	return errors.Join(errs...)
}

// LLMProvider returns the LLM settings to use. Without an explicit
// llm.provider the first vendor with a configured key wins, then the
// vendors' own key variables are probed. It reports false when no
// provider can be configured.
func (c *Config) LLMProvider() (llm.Config, bool) {
	cfg := c.LLM
	if cfg.Provider != "" {
		return cfg, true
	}
	for _, name := range []string{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderOpenRouter} {
		cfg.Provider = name
		if p := cfg.Selected(); p != nil && p.APIKey != "" {
			return cfg, true
		}
	}
	cfg.Provider = ""
	return llm.DiscoverConfig(cfg)
}

// Timeout returns the LLM request budget, never zero.
func (c *Config) Timeout() time.Duration {
	if c.LLM.Timeout > 0 {
		return c.LLM.Timeout
	}
	return llm.DefaultConfig().Timeout
}

// DefaultDir is $XDG_CONFIG_HOME/easypractice, falling back to the OS
// config directory.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		var err error
		if base, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(base, "easypractice"), nil
}
