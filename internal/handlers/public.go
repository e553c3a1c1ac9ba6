package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"storepress/internal/cache"
	"storepress/internal/layout"
	"storepress/internal/models"
	"storepress/internal/store"
)

// Public serves the storefront read endpoints: published page reads for
// anonymous visitors and draft previews for authenticated operators.
type Public struct {
	themes    *store.ThemeStore
	templates *store.TemplateStore
	cache     *cache.PublishedCache
}

// NewPublic creates the public handler group. cache may be nil, in which
// case every published read goes to the database.
func NewPublic(themes *store.ThemeStore, templates *store.TemplateStore, pageCache *cache.PublishedCache) *Public {
	return &Public{themes: themes, templates: templates, cache: pageCache}
}

// pagePayload is the response body for both published and preview reads.
type pagePayload struct {
	PageType    models.PageType `json:"pageType"`
	Slug        string          `json:"slug,omitempty"`
	Content     json.RawMessage `json:"content"`
	SEO         models.SEO      `json:"seo"`
	IsDefault   bool            `json:"isDefault,omitempty"`
	IsDraft     bool            `json:"isDraft,omitempty"`
	LastUpdated *time.Time      `json:"lastUpdated,omitempty"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
}

// cachedPage is the Valkey entry for one published read: the rendered
// body plus the ETag it was served with, so cache hits still revalidate.
type cachedPage struct {
	ETag string          `json:"etag"`
	Body json.RawMessage `json:"body"`
}

// ReadPublished serves the published snapshot of a page. Responses carry
// no-cache, must-revalidate and an ETag derived from the row's update
// time, so storefront clients always revalidate but transfer the body
// only when it changed. Pages without a published template fall back to
// the default layout.
func (h *Public) ReadPublished(w http.ResponseWriter, r *http.Request) {
	pageType := models.PageType(chi.URLParam(r, "pageType"))
	pageSlug, err := validatePageKey(pageType, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err)
		return
	}

	theme, err := h.themes.EnsureActive()
	if errors.Is(err, models.ErrNotFound) {
		h.writeDefault(w, pageType, pageSlug)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	if h.cache != nil {
		if raw, ok := h.cache.Get(r.Context(), theme.ID, pageType, pageSlug); ok {
			var entry cachedPage
			if json.Unmarshal(raw, &entry) == nil {
				h.writePage(w, r, entry.ETag, entry.Body)
				return
			}
		}
	}

	t, err := h.templates.FindByKey(theme.ID, pageType, pageSlug)
	if err != nil {
		respondError(w, err)
		return
	}
	if t == nil || models.ContentEmpty(t.PublishedContent) {
		h.writeDefault(w, pageType, pageSlug)
		return
	}

	payload := pagePayload{
		PageType:    t.PageType,
		Slug:        t.Slug,
		Content:     t.PublishedContent,
		SEO:         t.SEO(),
		LastUpdated: &t.UpdatedAt,
		PublishedAt: t.PublishedAt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		respondError(w, err)
		return
	}

	etag := pageETag(t.UpdatedAt)
	if h.cache != nil {
		if entry, err := json.Marshal(cachedPage{ETag: etag, Body: body}); err == nil {
			h.cache.Set(r.Context(), theme.ID, pageType, pageSlug, entry)
		}
	}

	h.writePage(w, r, etag, body)
}

// ReadDraft serves the draft content for operator preview. Preview
// responses are never cached anywhere: no-store on the wire, and the
// published-read cache is bypassed entirely.
func (h *Public) ReadDraft(w http.ResponseWriter, r *http.Request) {
	pageType := models.PageType(chi.URLParam(r, "pageType"))
	pageSlug, err := validatePageKey(pageType, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err)
		return
	}

	theme, err := h.themes.EnsureActive()
	if errors.Is(err, models.ErrNotFound) {
		respondError(w, models.ErrNotFound)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	t, err := h.templates.FindByKey(theme.ID, pageType, pageSlug)
	if err != nil {
		respondError(w, err)
		return
	}

	payload := pagePayload{PageType: pageType, Slug: pageSlug, IsDraft: true}
	if t != nil && !models.ContentEmpty(t.DraftContent) {
		payload.Content = t.DraftContent
		payload.SEO = t.SEO()
		payload.LastUpdated = &t.UpdatedAt
	} else {
		payload.Content = layout.Default(pageType)
		payload.IsDefault = true
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, payload)
}

// writeDefault serves the fallback layout for a page with no published
// template. Default bodies are static, so they skip the Valkey cache and
// carry no ETag.
func (h *Public) writeDefault(w http.ResponseWriter, pageType models.PageType, pageSlug string) {
	payload := pagePayload{
		PageType:  pageType,
		Slug:      pageSlug,
		Content:   layout.Default(pageType),
		IsDefault: true,
	}
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	respondJSON(w, http.StatusOK, payload)
}

// writePage writes a published body with revalidation headers, answering
// 304 when the client's If-None-Match matches the current ETag.
func (h *Public) writePage(w http.ResponseWriter, r *http.Request, etag string, body []byte) {
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// pageETag derives a weak ETag from the template's update time. The
// update time changes on every committed write, so it identifies the
// published revision.
func pageETag(updatedAt time.Time) string {
	return `W/"` + strconv.FormatInt(updatedAt.UnixNano(), 36) + `"`
}
