package models

import (
	"time"

	"github.com/google/uuid"
)

// Theme is a named collection of templates representing one storefront
// look. At most one theme is active at any committed state; the active
// theme scopes all public template lookups.
type Theme struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	IsActive        bool       `json:"is_active"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	LastPublishedAt *time.Time `json:"last_published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
