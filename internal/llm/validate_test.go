package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func itemsSchema() *Schema {
	return &Schema{
		Name: "test-items",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key": map[string]any{"type": "string"},
				"difficulty": map[string]any{
					"type": "string",
					"enum": []string{"easy", "medium", "hard"},
				},
				"items": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"prompt": map[string]any{"type": "string"},
							"answer": map[string]any{"type": "string"},
						},
						"required": []string{"prompt", "answer"},
					},
				},
			},
			"required": []string{"key", "items"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"key":"add","difficulty":"easy","items":[{"prompt":"1+1","answer":"2"}]}`, false},
		{"optional omitted", `{"key":"add","items":[{"prompt":"1+1","answer":"2"}]}`, false},
		{"missing required", `{"items":[{"prompt":"1+1","answer":"2"}]}`, true},
		{"nested missing", `{"key":"add","items":[{"prompt":"1+1"}]}`, true},
		{"wrong type", `{"key":7,"items":[{"prompt":"1+1","answer":"2"}]}`, true},
		{"bad enum", `{"key":"add","difficulty":"extreme","items":[{"prompt":"1+1","answer":"2"}]}`, true},
		{"too few items", `{"key":"add","items":[]}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(itemsSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			var invalid *ErrInvalidResponse
			if err != nil && !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidResponse, got %T", err)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`plain text`)); err != nil {
		t.Fatalf("expected no error without a schema, got: %v", err)
	}
}
