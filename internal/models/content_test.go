package models

import (
	"encoding/json"
	"testing"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"empty is valid", ``, false},
		{"null is valid", `null`, false},
		{"empty array is valid", `[]`, false},
		{"simple section", `[{"type":"hero"}]`, false},
		{"nested sections", `[{"type":"row","children":[{"type":"text"}]}]`, false},
		{"object instead of array", `{"type":"hero"}`, true},
		{"missing type", `[{"props":{}}]`, true},
		{"missing nested type", `[{"type":"row","children":[{"props":{}}]}]`, true},
		{"not json", `nonsense`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContent(%q) = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestContentEmpty(t *testing.T) {
	for _, raw := range []string{``, ` `, `null`, `[]`, " [] "} {
		if !ContentEmpty(json.RawMessage(raw)) {
			t.Errorf("ContentEmpty(%q) = false, want true", raw)
		}
	}
	for _, raw := range []string{`[{"type":"hero"}]`, `[null]`} {
		if ContentEmpty(json.RawMessage(raw)) {
			t.Errorf("ContentEmpty(%q) = true, want false", raw)
		}
	}
}

func TestContentEqualIgnoresFormatting(t *testing.T) {
	a := json.RawMessage(`[{"type":"hero","props":{"a":1,"b":2}}]`)
	b := json.RawMessage(`[ { "props": {"b": 2, "a": 1}, "type": "hero" } ]`)
	if !ContentEqual(a, b) {
		t.Error("structurally equal documents should compare equal")
	}

	c := json.RawMessage(`[{"type":"hero","props":{"a":1}}]`)
	if ContentEqual(a, c) {
		t.Error("different documents should not compare equal")
	}

	if !ContentEqual(nil, json.RawMessage(`[]`)) {
		t.Error("both empty forms should compare equal")
	}
	if ContentEqual(nil, a) {
		t.Error("empty should not equal non-empty")
	}
}

func TestCloneContentDoesNotAlias(t *testing.T) {
	original := json.RawMessage(`[{"type":"text"}]`)
	clone := CloneContent(original)

	original[2] = 'X'
	if string(clone) != `[{"type":"text"}]` {
		t.Error("clone should be unaffected by mutation of the original")
	}

	if CloneContent(nil) != nil {
		t.Error("cloning empty content should yield nil")
	}
}
