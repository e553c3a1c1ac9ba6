package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Labels for the three snapshot points in the template lifecycle.
const (
	LabelAutoSave    = "Auto-save backup"
	LabelPrePublish  = "Pre-publish backup"
	LabelPreRollback = "Pre-rollback backup"
)

// VersionCapacity is the maximum number of versions retained per template.
// The history behaves as a ring buffer: appending beyond the capacity
// evicts the oldest entry.
const VersionCapacity = 20

// TemplateVersion is one bounded historical snapshot of a template, taken
// before a destructive mutation so rollback can restore it. Seq is a
// per-table monotonic counter; index 0 is the oldest surviving entry.
type TemplateVersion struct {
	ID             uuid.UUID       `json:"id"`
	TemplateID     uuid.UUID       `json:"template_id"`
	Seq            int64           `json:"-"`
	Content        json.RawMessage `json:"content"`
	SEOTitle       string          `json:"seo_title,omitempty"`
	SEODescription string          `json:"seo_description,omitempty"`
	SEOKeywords    string          `json:"seo_keywords,omitempty"`
	Label          string          `json:"label"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}
