package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PageType categorizes templates by the storefront page they lay out.
type PageType string

const (
	PageTypeHome    PageType = "home"
	PageTypeCatalog PageType = "catalog"
	PageTypeProduct PageType = "product"
	PageTypeAbout   PageType = "about"
	PageTypeContact PageType = "contact"
	PageTypeCustom  PageType = "custom"
)

// ValidPageType reports whether t is one of the known page types.
func ValidPageType(t PageType) bool {
	switch t {
	case PageTypeHome, PageTypeCatalog, PageTypeProduct, PageTypeAbout, PageTypeContact, PageTypeCustom:
		return true
	}
	return false
}

// TemplateStatus represents the publishing state of a template.
type TemplateStatus string

const (
	TemplateStatusDraft     TemplateStatus = "draft"
	TemplateStatusPublished TemplateStatus = "published"
)

// Template is the draft/published pair of layout content for one
// (theme, page type, slug) combination. Slug is empty for every page type
// except custom, where it is required; the composite key is unique.
//
// PublishedContent is written only by the publish workflow. RowVersion
// backs optimistic concurrency: every committed update increments it, and
// updates that name a stale RowVersion fail with ErrConflict.
type Template struct {
	ID               uuid.UUID       `json:"id"`
	ThemeID          uuid.UUID       `json:"theme_id"`
	PageType         PageType        `json:"page_type"`
	Slug             string          `json:"slug,omitempty"`
	DraftContent     json.RawMessage `json:"draft_content,omitempty"`
	PublishedContent json.RawMessage `json:"published_content,omitempty"`
	Status           TemplateStatus  `json:"status"`
	SEOTitle         string          `json:"seo_title,omitempty"`
	SEODescription   string          `json:"seo_description,omitempty"`
	SEOKeywords      string          `json:"seo_keywords,omitempty"`
	RowVersion       int             `json:"row_version"`
	PublishedAt      *time.Time      `json:"published_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsPublished returns true if the template is in published status.
func (t *Template) IsPublished() bool {
	return t.Status == TemplateStatusPublished
}

// SEO bundles the optional search metadata fields carried alongside the
// draft content.
type SEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// SEO returns the template's search metadata as one value.
func (t *Template) SEO() SEO {
	return SEO{Title: t.SEOTitle, Description: t.SEODescription, Keywords: t.SEOKeywords}
}
