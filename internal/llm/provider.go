package llm

import (
	"context"
	"encoding/json"
)

// DefaultMaxTokens is used when a Request leaves MaxTokens unset.
const DefaultMaxTokens = 4096

// Stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Provider generates structured output from a prompt.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the output is JSON validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model the provider is configured for.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for JSON output through the vendor's native
	// structured output support.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 leaves the vendor default
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema with a name. Name is used as the vendor's schema
// or tool name and as the validation cache key, so it must be unique per
// definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // StopEnd or StopMaxTokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}

// finish checks a vendor response against the request before handing it
// back. Truncated structured output is reported as ErrMaxTokensExceeded
// rather than as a schema failure.
func finish(req Request, resp *Response) (*Response, error) {
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

// resolveModel maps a friendly alias to a vendor model id. Unknown names
// pass through unchanged.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
