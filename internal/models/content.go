package models

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Section is one node of a layout tree. A page layout is an ordered list
// of sections; sections may nest arbitrarily through Children.
type Section struct {
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Children []Section      `json:"children,omitempty"`
}

// ValidateContent checks that raw is a JSON array of sections and that
// every section in the tree carries a non-empty type.
func ValidateContent(raw json.RawMessage) error {
	if ContentEmpty(raw) {
		return nil
	}

	var sections []Section
	if err := json.Unmarshal(raw, &sections); err != nil {
		return Validation("content must be a JSON array of sections")
	}
	return validateSections(sections)
}

func validateSections(sections []Section) error {
	for _, s := range sections {
		if s.Type == "" {
			return Validation("every section needs a non-empty type")
		}
		if err := validateSections(s.Children); err != nil {
			return err
		}
	}
	return nil
}

// CloneContent returns an independent copy of raw. Stored snapshots must
// never alias the live draft buffer, so later draft mutation cannot alter
// a snapshot taken before it.
func CloneContent(raw json.RawMessage) json.RawMessage {
	if ContentEmpty(raw) {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

// ContentEmpty reports whether raw holds no layout at all. JSON null and
// an empty array both count as empty.
func ContentEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	return bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]"))
}

// ContentEqual compares two content documents structurally. Byte
// comparison is not enough because JSONB round-trips normalize key order
// and whitespace.
func ContentEqual(a, b json.RawMessage) bool {
	if ContentEmpty(a) || ContentEmpty(b) {
		return ContentEmpty(a) && ContentEmpty(b)
	}

	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
