package handlers

import (
	"encoding/json"

	"storepress/internal/models"
	"storepress/internal/slug"
)

// Request size limits for the admin API.
const (
	maxContentBytes   = 512 * 1024
	maxSEOTitleLen    = 300
	maxSEODescLen     = 500
	maxSEOKeywordsLen = 500
	maxThemeNameLen   = 120
)

// validatePageKey checks a (page type, slug) pair and returns the
// normalized slug. Custom pages require a slug; every other page type
// forbids one.
func validatePageKey(pageType models.PageType, rawSlug string) (string, error) {
	if !models.ValidPageType(pageType) {
		return "", models.Validation("unknown page type")
	}

	normalized := slug.Normalize(rawSlug)
	if pageType == models.PageTypeCustom {
		if normalized == "" {
			return "", models.Validation("custom pages require a slug")
		}
		return normalized, nil
	}

	if rawSlug != "" {
		return "", models.Validation("only custom pages carry a slug")
	}
	return "", nil
}

// validateDraftInput enforces the size limits on a draft save request.
func validateDraftInput(content json.RawMessage, seo *models.SEO) error {
	if len(content) > maxContentBytes {
		return models.Validation("content exceeds the maximum size")
	}
	if seo == nil {
		return nil
	}
	if len(seo.Title) > maxSEOTitleLen {
		return models.Validation("seo title is too long")
	}
	if len(seo.Description) > maxSEODescLen {
		return models.Validation("seo description is too long")
	}
	if len(seo.Keywords) > maxSEOKeywordsLen {
		return models.Validation("seo keywords are too long")
	}
	return nil
}
