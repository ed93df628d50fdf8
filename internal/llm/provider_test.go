package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/easypractice/internal/logger"
)

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockJSON(map[string]int{"b": 2}),
	)

	first, err := mock.Generate(context.Background(), Request{System: "sys"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Content) != `{"a":1}` || first.Usage.InputTokens != 10 || first.StopReason != StopEnd {
		t.Fatalf("first response = %+v", first)
	}
	second, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second.Content) != `{"b":2}` {
		t.Fatalf("second content = %s", second.Content)
	}

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable once drained, got %T", err)
	}
	if mock.CallCount() != 3 || mock.Calls[0].System != "sys" {
		t.Fatalf("calls = %+v", mock.Calls)
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockJSON(map[string]any{"key": "add"}))
	_, err := mock.Generate(context.Background(), Request{Schema: itemsSchema()})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestFinish_TruncatedStructuredOutput(t *testing.T) {
	req := Request{Schema: itemsSchema()}
	_, err := finish(req, &Response{Content: json.RawMessage(`{"key":"add","items":[{"pro`), StopReason: StopMaxTokens})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
	}

	resp, err := finish(Request{}, &Response{Content: json.RawMessage(`cut off`), StopReason: StopMaxTokens})
	if err != nil || resp == nil {
		t.Fatalf("plain text truncation should pass through, got %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, "catalog-gen")); p != "catalog-gen" {
		t.Fatalf("expected 'catalog-gen', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	withKey := ProviderConfig{APIKey: "sk-test"}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: withKey}, false},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: withKey}, false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: withKey}, false},
		{"key on another provider", Config{Provider: ProviderOpenAI, Gemini: withKey}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, d := range discoveryOrder {
		t.Setenv(d.env, "")
	}
	if _, ok := DiscoverConfig(DefaultConfig()); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg, ok := DiscoverConfig(DefaultConfig())
	if !ok {
		t.Fatal("expected a provider")
	}
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-oai" {
		t.Fatalf("discovered %q with key %q, want openai first", cfg.Provider, cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("defaults lost: model = %q", cfg.OpenAI.Model)
	}
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		model string
		want  float64
		ok    bool
	}{
		{"claude-haiku-4-5", 1*1 + 5*0.5, true},
		{"claude-haiku-4-5-20251001", 1*1 + 5*0.5, true},
		{"gpt-4o-mini-2024-07-18", 0.15 + 0.6*0.5, true},
		{"google/gemini-2.5-flash", 0.3 + 2.5*0.5, true},
		{"mock", 0, false},
	}
	u := Usage{InputTokens: 1_000_000, OutputTokens: 500_000}
	for _, tt := range tests {
		got, ok := EstimateCost(tt.model, u)
		if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EstimateCost(%q) = %v, %v; want %v, %v", tt.model, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewProvider_LogsRequests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.log")
	log, err := logger.New(logger.Options{Level: "info", File: path})
	if err != nil {
		t.Fatal(err)
	}

	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock, Retry: retryConfig()}, log)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID() = %q", p.ModelID())
	}
	if _, err := p.Generate(WithPurpose(context.Background(), "catalog-gen"), Request{}); err == nil {
		t.Fatal("expected an error from the empty mock")
	}
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "llm request failed") || !strings.Contains(out, "catalog-gen") {
		t.Fatalf("log missing request entry: %s", out)
	}
}

func TestNewProvider_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: ProviderAnthropic}, nil); err == nil {
		t.Fatal("expected error without an API key")
	}
}
