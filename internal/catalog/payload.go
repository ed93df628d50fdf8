// Package catalog parses practice catalogs, imports them into the store and
// keeps the default catalogs in sync with their manifest.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/easypractice/internal/locale"
)

// DefaultVersion is assumed for payloads that carry no version.
const DefaultVersion = "1.0"

// Payload is a parsed catalog document holding one or more sets.
type Payload struct {
	Version string
	Sets    []SetPayload
}

// SetPayload describes one item set and its items.
type SetPayload struct {
	Key         string         `json:"problemSetKey"`
	Name        locale.Text    `json:"name"`
	Description locale.Text    `json:"description,omitzero"`
	Version     string         `json:"version,omitempty"`
	Difficulty  string         `json:"difficulty,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Items       []ItemPayload  `json:"problems"`
}

// ItemPayload is one prompt/answer pair.
type ItemPayload struct {
	Prompt      string `json:"problem"`
	Answer      string `json:"answer"`
	PromptAudio string `json:"problem_audio,omitempty"`
	AnswerAudio string `json:"answer_audio,omitempty"`
}

// document is the wire form. It holds either a single set split across
// problemSet and problems, or a list under problemSets.
type document struct {
	Version     string        `json:"version,omitempty"`
	ProblemSet  *SetPayload   `json:"problemSet,omitempty"`
	Problems    []ItemPayload `json:"problems,omitempty"`
	ProblemSets []SetPayload  `json:"problemSets,omitempty"`
}

// Parse decodes a JSON or YAML catalog document and validates it against
// the catalog schema. source names the document in errors.
func Parse(data []byte, source string) (*Payload, error) {
	raw, err := normalize(data)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if err := validate(parsed); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	p := &Payload{Version: doc.Version}
	if p.Version == "" {
		p.Version = DefaultVersion
	}
	switch {
	case len(doc.ProblemSets) > 0:
		p.Sets = doc.ProblemSets
	case doc.ProblemSet != nil:
		set := *doc.ProblemSet
		set.Items = doc.Problems
		p.Sets = []SetPayload{set}
	}
	for i := range p.Sets {
		if p.Sets[i].Version == "" {
			p.Sets[i].Version = p.Version
		}
	}
	return p, nil
}

// Marshal encodes p in the multi-set JSON form accepted by Parse.
func (p *Payload) Marshal() ([]byte, error) {
	doc := document{Version: p.Version, ProblemSets: p.Sets}
	return json.MarshalIndent(doc, "", "  ")
}

// normalize returns data as JSON. YAML input is decoded and re-encoded.
func normalize(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(trimmed, &root); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	quoteScalars(&root)

	var v any
	if err := root.Decode(&v); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return out, nil
}

// textFields hold strings in the wire form. Plain YAML writes "answer: 4"
// or "version: 1.10" unquoted, which would otherwise decode as numbers.
var textFields = map[string]bool{
	"version":       true,
	"problemSetKey": true,
	"difficulty":    true,
	"problem":       true,
	"answer":        true,
	"problem_audio": true,
	"answer_audio":  true,
	"name":          true,
	"description":   true,
}

// quoteScalars retags the scalar values of text fields as strings, keeping
// their source spelling. Localized name and description maps are retagged
// one level down.
func quoteScalars(n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			quoteScalars(c)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			switch {
			case !textFields[key.Value]:
				quoteScalars(val)
			case val.Kind == yaml.ScalarNode:
				quoteScalar(val)
			case val.Kind == yaml.MappingNode && (key.Value == "name" || key.Value == "description"):
				for j := 1; j < len(val.Content); j += 2 {
					quoteScalar(val.Content[j])
				}
			}
		}
	}
}

func quoteScalar(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag != "!!null" {
		n.Tag = "!!str"
		n.Style = yaml.DoubleQuotedStyle
	}
}

//go:embed payload.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

const schemaURL = "schema://catalog.json"

func validate(parsed any) error {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	if schemaErr != nil {
		return schemaErr
	}
	if err := compiledSchema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
