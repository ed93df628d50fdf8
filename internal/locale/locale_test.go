package locale

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestResolve(t *testing.T) {
	both := Localized(map[string]string{"en": "Addition", "zh": "加法"})
	zhOnly := Localized(map[string]string{"zh": "加法"})
	frOnly := Localized(map[string]string{"fr": "Addition", "de": "Addition DE"})

	tests := []struct {
		name string
		text Text
		lang string
		want string
	}{
		{"plain ignores language", Plain("Numbers"), Chinese, "Numbers"},
		{"requested language", both, Chinese, "加法"},
		{"english", both, English, "Addition"},
		{"fallback to english", both, "ja", "Addition"},
		{"any value when no fallback", zhOnly, English, "加法"},
		{"lowest code wins", frOnly, English, "Addition DE"},
		{"zero value", Text{}, English, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.text.Resolve(tt.lang); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.lang, got, tt.want)
			}
		})
	}
}

func TestTextJSON(t *testing.T) {
	var plain Text
	if err := json.Unmarshal([]byte(`"Subtraction"`), &plain); err != nil {
		t.Fatalf("unmarshal plain: %v", err)
	}
	if plain.IsLocalized() || plain.String() != "Subtraction" {
		t.Errorf("plain = %+v", plain)
	}

	var loc Text
	if err := json.Unmarshal([]byte(`{"en":"Subtraction","zh":"减法"}`), &loc); err != nil {
		t.Fatalf("unmarshal localized: %v", err)
	}
	if !loc.IsLocalized() || loc.Resolve(Chinese) != "减法" {
		t.Errorf("localized = %+v", loc)
	}

	out, err := json.Marshal(loc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"en":"Subtraction","zh":"减法"}` {
		t.Errorf("marshal = %s", out)
	}

	var bad Text
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Error("expected error for numeric text")
	}
}

func TestTextYAML(t *testing.T) {
	var doc struct {
		A Text `yaml:"a"`
		B Text `yaml:"b"`
	}
	src := "a: Times tables\nb:\n  en: Times tables\n  zh: 乘法表\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.A.String() != "Times tables" {
		t.Errorf("A = %q", doc.A.String())
	}
	if doc.B.Resolve(Chinese) != "乘法表" {
		t.Errorf("B(zh) = %q", doc.B.Resolve(Chinese))
	}
}

func TestIsZero(t *testing.T) {
	if !(Text{}).IsZero() {
		t.Error("zero Text should be zero")
	}
	if !Localized(map[string]string{"en": ""}).IsZero() {
		t.Error("all-empty localized should be zero")
	}
	if Plain("x").IsZero() {
		t.Error("plain x should not be zero")
	}
}
