package authoring

import (
	"fmt"
	"strings"

	"github.com/abhisek/easypractice/internal/catalog"
	"github.com/abhisek/easypractice/internal/llm"
	"github.com/abhisek/easypractice/internal/locale"
)

const systemPrompt = `You write drill sets for a flash-card practice app.
Each problem is a short prompt with exactly one correct answer that a learner types in.
Answers are as short as possible: a number, a word or a short phrase with no explanation.
Never repeat a problem. Vary the problems across the whole topic.`

var languageNames = map[string]string{
	locale.English: "English",
	locale.Chinese: "Simplified Chinese",
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Write exactly %d problems.\n", req.Count)
	fmt.Fprintf(&b, "Write the name, description and problems in %s.\n", languageNames[req.Language])
	if req.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s.\n", req.Difficulty)
	}
	return b.String()
}

// itemSetSchema is the model-facing shape. It stays within the subset every
// vendor's structured output accepts, so localized text and the multi-set
// form are added afterwards.
var itemSetSchema = &llm.Schema{
	Name:        "practice-item-set",
	Description: "A named set of practice problems with answers",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "description": "Short title of the set"},
			"description": map[string]any{"type": "string", "description": "One sentence describing the set"},
			"difficulty":  map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
			"problems": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"problem": map[string]any{"type": "string"},
						"answer":  map[string]any{"type": "string"},
					},
					"required": []string{"problem", "answer"},
				},
			},
		},
		"required": []string{"name", "description", "difficulty", "problems"},
	},
}

// draft is the decoded model output.
type draft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Problems    []struct {
		Problem string `json:"problem"`
		Answer  string `json:"answer"`
	} `json:"problems"`
}

func (d draft) toSet(req Request) catalog.SetPayload {
	text := func(s string) locale.Text {
		if s = strings.TrimSpace(s); s == "" {
			return locale.Text{}
		}
		return locale.Localized(map[string]string{req.Language: s})
	}

	name := text(d.Name)
	if name.IsZero() {
		name = text(req.Topic)
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = d.Difficulty
	}

	set := catalog.SetPayload{
		Key:         req.Key,
		Name:        name,
		Description: text(d.Description),
		Version:     "1.0.0",
		Difficulty:  difficulty,
		Metadata:    map[string]any{"generated": true, "topic": req.Topic},
	}
	seen := make(map[string]bool, len(d.Problems))
	for _, p := range d.Problems {
		prompt, answer := strings.TrimSpace(p.Problem), strings.TrimSpace(p.Answer)
		if prompt == "" || answer == "" || seen[prompt] {
			continue
		}
		seen[prompt] = true
		set.Items = append(set.Items, catalog.ItemPayload{Prompt: prompt, Answer: answer})
	}
	return set
}
