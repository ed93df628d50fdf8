package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/easypractice/internal/locale"
)

// Manifest lists the default catalogs and where to fetch them.
type Manifest struct {
	ItemSets []ManifestEntry `json:"problemSets" yaml:"problemSets"`
}

// ManifestEntry names one catalog document by key and version.
type ManifestEntry struct {
	Key         string      `json:"problemSetKey" yaml:"problemSetKey"`
	Version     string      `json:"version" yaml:"version"`
	Path        string      `json:"path" yaml:"path"`
	Name        locale.Text `json:"name" yaml:"name"`
	Description locale.Text `json:"description,omitzero" yaml:"description,omitempty"`
}

// Keys returns the keys of every entry in manifest order.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.ItemSets))
	for _, e := range m.ItemSets {
		keys = append(keys, e.Key)
	}
	return keys
}

// ParseManifest decodes a JSON or YAML manifest.
func ParseManifest(data []byte, source string) (*Manifest, error) {
	var m Manifest
	trimmed := bytes.TrimSpace(data)
	var err error
	if len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &m)
	} else {
		err = yaml.Unmarshal(trimmed, &m)
	}
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	seen := make(map[string]bool, len(m.ItemSets))
	for i, e := range m.ItemSets {
		switch {
		case e.Key == "":
			return nil, &ParseError{Source: source, Err: fmt.Errorf("entry %d: missing problemSetKey", i)}
		case e.Path == "":
			return nil, &ParseError{Source: source, Err: fmt.Errorf("entry %q: missing path", e.Key)}
		case seen[e.Key]:
			return nil, &ParseError{Source: source, Err: fmt.Errorf("duplicate key %q", e.Key)}
		}
		seen[e.Key] = true
	}
	return &m, nil
}
