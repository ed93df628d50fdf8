// Package authoring drafts new item sets with an LLM.
package authoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/easypractice/internal/catalog"
	"github.com/abhisek/easypractice/internal/llm"
	"github.com/abhisek/easypractice/internal/locale"
	"github.com/abhisek/easypractice/internal/logger"
)

const (
	DefaultCount = 20
	MaxCount     = 200

	purpose = "catalog-gen"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Request describes the set to draft.
type Request struct {
	Topic      string // free-form, e.g. "multiplying by 7"
	Key        string // set key, derived from Topic when empty
	Count      int
	Language   string
	Difficulty string // easy, medium or hard; the model picks when empty
}

// Generator turns a topic into a catalog payload.
type Generator struct {
	provider llm.Provider
	log      *logger.Logger

	// MaxTokens caps the response. Zero scales with the item count.
	MaxTokens int
}

func New(provider llm.Provider, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{provider: provider, log: log}
}

// Generate asks the model for one item set and returns it as a payload
// that has passed the same validation as an imported file.
func (g *Generator) Generate(ctx context.Context, req Request) (*catalog.Payload, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, purpose), llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userPrompt(req)}},
		Schema:      itemSetSchema,
		MaxTokens:   g.maxTokens(req.Count),
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", req.Key, err)
	}

	var out draft
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	set := out.toSet(req)
	if len(set.Items) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("no usable items")}
	}
	if len(set.Items) < req.Count {
		g.log.Warn("model returned fewer items than requested",
			"key", req.Key, "requested", req.Count, "got", len(set.Items))
	}

	data, err := (&catalog.Payload{Version: set.Version, Sets: []catalog.SetPayload{set}}).Marshal()
	if err != nil {
		return nil, err
	}
	return catalog.Parse(data, "llm:"+resp.Model)
}

func (g *Generator) maxTokens(count int) int {
	if g.MaxTokens > 0 {
		return g.MaxTokens
	}
	return min(512+count*60, 16384)
}

func normalize(req Request) (Request, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return req, errors.New("topic is required")
	}
	if req.Key == "" {
		req.Key = Slug(req.Topic)
	}
	if !keyPattern.MatchString(req.Key) {
		return req, fmt.Errorf("invalid set key %q: use lowercase letters, digits and dashes", req.Key)
	}
	switch {
	case req.Count == 0:
		req.Count = DefaultCount
	case req.Count < 0 || req.Count > MaxCount:
		return req, fmt.Errorf("count must be between 1 and %d", MaxCount)
	}
	if req.Language == "" {
		req.Language = locale.English
	}
	if !locale.Valid(req.Language) {
		return req, fmt.Errorf("unsupported language %q", req.Language)
	}
	switch req.Difficulty {
	case "", "easy", "medium", "hard":
	default:
		return req, fmt.Errorf("difficulty must be easy, medium or hard")
	}
	return req, nil
}

// Slug derives a set key from free text.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	return b.String()
}
