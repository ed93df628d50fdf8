// Package locale holds the display languages and the localized text type
// used for catalog names and descriptions.
package locale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	English = "en"
	Chinese = "zh"

	// Fallback is tried when the requested language has no value.
	Fallback = English
)

// Supported returns the display languages in menu order.
func Supported() []string {
	return []string{English, Chinese}
}

// Valid reports whether lang is a supported display language.
func Valid(lang string) bool {
	return slices.Contains(Supported(), lang)
}

// Text is either plain text or a set of per-language values.
// The zero value is empty plain text.
type Text struct {
	plain  string
	values map[string]string
}

// Plain returns text that reads the same in every language.
func Plain(s string) Text {
	return Text{plain: s}
}

// Localized returns text with one value per language code.
func Localized(values map[string]string) Text {
	if len(values) == 0 {
		return Text{}
	}
	return Text{values: maps.Clone(values)}
}

// IsLocalized reports whether t carries per-language values.
func (t Text) IsLocalized() bool {
	return t.values != nil
}

// IsZero reports whether t resolves to the empty string in every language.
func (t Text) IsZero() bool {
	if t.values == nil {
		return t.plain == ""
	}
	for _, v := range t.values {
		if v != "" {
			return false
		}
	}
	return true
}

// Resolve returns the value for lang, then for Fallback, then the first
// non-empty value by language code.
func (t Text) Resolve(lang string) string {
	if t.values == nil {
		return t.plain
	}
	if v := t.values[lang]; v != "" {
		return v
	}
	if v := t.values[Fallback]; v != "" {
		return v
	}
	for _, k := range slices.Sorted(maps.Keys(t.values)) {
		if v := t.values[k]; v != "" {
			return v
		}
	}
	return ""
}

// String resolves t in the fallback language.
func (t Text) String() string {
	return t.Resolve(Fallback)
}

// Values returns a copy of the per-language values, or nil for plain text.
func (t Text) Values() map[string]string {
	return maps.Clone(t.values)
}

// MarshalJSON encodes plain text as a string and localized text as an object.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.values == nil {
		return json.Marshal(t.plain)
	}
	return json.Marshal(t.values)
}

// UnmarshalJSON accepts a string, an object of strings, or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = Text{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Plain(s)
		return nil
	case len(data) > 0 && data[0] == '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("localized text: %w", err)
		}
		*t = Localized(m)
		return nil
	default:
		return fmt.Errorf("localized text: expected string or object, got %s", truncate(string(data)))
	}
}

// MarshalYAML mirrors MarshalJSON.
func (t Text) MarshalYAML() (any, error) {
	if t.values == nil {
		return t.plain, nil
	}
	return t.values, nil
}

// UnmarshalYAML accepts a scalar or a mapping of strings.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = Plain(node.Value)
		return nil
	case yaml.MappingNode:
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("localized text: %w", err)
		}
		*t = Localized(m)
		return nil
	default:
		return fmt.Errorf("localized text: line %d: expected string or mapping", node.Line)
	}
}

func truncate(s string) string {
	if len(s) <= 32 {
		return s
	}
	return strings.TrimSpace(s[:32]) + "..."
}
