// Package publish orchestrates the template lifecycle: draft saves with
// auto-backup, draft-to-published promotion with pre-publish backup and
// live-update notification, and rollback to an earlier version. All three
// mutations are serialized per template identity.
package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"storepress/internal/broadcast"
	"storepress/internal/models"
	"storepress/internal/store"
)

// Broadcaster is the slice of the live-update registry the workflow needs.
type Broadcaster interface {
	Broadcast(event string, payload any) error
}

// Invalidator removes a stale published-read cache entry after a publish.
type Invalidator interface {
	Invalidate(themeID uuid.UUID, pageType models.PageType, slug string)
}

// PublishedEvent is the payload of a template-published notification.
type PublishedEvent struct {
	ThemeID     uuid.UUID       `json:"themeId"`
	PageType    models.PageType `json:"pageType"`
	Slug        string          `json:"slug,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	PublishedAt time.Time       `json:"publishedAt"`
}

// Workflow coordinates template mutations across the template, version,
// and theme stores. broadcaster and invalidator are best-effort effects:
// their failures are logged and never fail the mutation.
type Workflow struct {
	templates   *store.TemplateStore
	versions    *store.VersionStore
	themes      *store.ThemeStore
	broadcaster Broadcaster
	invalidator Invalidator
	locks       *keyedMutex
}

// NewWorkflow creates a publish workflow. broadcaster and invalidator may
// be nil (events and cache invalidation are then skipped).
func NewWorkflow(templates *store.TemplateStore, versions *store.VersionStore, themes *store.ThemeStore, broadcaster Broadcaster, invalidator Invalidator) *Workflow {
	return &Workflow{
		templates:   templates,
		versions:    versions,
		themes:      themes,
		broadcaster: broadcaster,
		invalidator: invalidator,
		locks:       newKeyedMutex(),
	}
}

// SaveDraft replaces the template's draft content and SEO metadata. The
// previous draft is backed up first, unless it is empty or structurally
// equal to the published snapshot. A draft matching the published content
// is already recoverable through the pre-publish backup, so storing it
// again would double-count history.
func (w *Workflow) SaveDraft(templateID uuid.UUID, content json.RawMessage, seo *models.SEO, actorID uuid.UUID) (*models.Template, error) {
	if err := models.ValidateContent(content); err != nil {
		return nil, err
	}

	w.locks.lock(templateID)
	defer w.locks.unlock(templateID)

	t, err := w.templates.FindByID(templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, models.ErrNotFound
	}

	if !models.ContentEmpty(t.DraftContent) && !models.ContentEqual(t.DraftContent, t.PublishedContent) {
		if _, err := w.versions.Snapshot(t.ID, t.DraftContent, t.SEO(), models.LabelAutoSave, actorID); err != nil {
			return nil, fmt.Errorf("auto-save backup: %w", err)
		}
	}

	t.DraftContent = models.CloneContent(content)
	if seo != nil {
		t.SEOTitle = seo.Title
		t.SEODescription = seo.Description
		t.SEOKeywords = seo.Keywords
	}
	return w.templates.UpdateDraft(t)
}

// Publish promotes the draft to the published snapshot. Before the swap,
// the previous published content (when present) is backed up so rollback
// can restore a prior live version. Persistence failures abort the whole
// operation with no event emitted; broadcast and cache invalidation are
// best-effort and never fail a durable publish.
func (w *Workflow) Publish(templateID, actorID uuid.UUID) (*models.Template, error) {
	w.locks.lock(templateID)
	defer w.locks.unlock(templateID)

	t, err := w.templates.FindByID(templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, models.ErrNotFound
	}
	if models.ContentEmpty(t.DraftContent) {
		return nil, models.ErrNothingToPublish
	}

	if !models.ContentEmpty(t.PublishedContent) {
		if _, err := w.versions.Snapshot(t.ID, t.PublishedContent, t.SEO(), models.LabelPrePublish, actorID); err != nil {
			return nil, fmt.Errorf("pre-publish backup: %w", err)
		}
	}

	updated, err := w.templates.Promote(t, models.CloneContent(t.DraftContent))
	if err != nil {
		return nil, err
	}

	if err := w.themes.TouchLastPublished(updated.ThemeID); err != nil {
		slog.Warn("stamp theme last published failed", "theme_id", updated.ThemeID, "error", err)
	}

	if w.invalidator != nil {
		w.invalidator.Invalidate(updated.ThemeID, updated.PageType, updated.Slug)
	}

	if w.broadcaster != nil {
		event := PublishedEvent{
			ThemeID:     updated.ThemeID,
			PageType:    updated.PageType,
			Slug:        updated.Slug,
			UpdatedAt:   updated.UpdatedAt,
			PublishedAt: *updated.PublishedAt,
		}
		if err := w.broadcaster.Broadcast(broadcast.EventTemplatePublished, event); err != nil {
			slog.Error("publish broadcast failed", "template_id", updated.ID, "error", err)
		}
	}

	return updated, nil
}

// Rollback restores the draft content and SEO metadata from the version at
// the given index, after backing up the current draft. The template is
// forced to draft status: a rollback never re-publishes automatically.
func (w *Workflow) Rollback(templateID uuid.UUID, versionIndex int, actorID uuid.UUID) (*models.Template, error) {
	w.locks.lock(templateID)
	defer w.locks.unlock(templateID)

	t, err := w.templates.FindByID(templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, models.ErrNotFound
	}

	version, err := w.versions.FindByIndex(t.ID, versionIndex)
	if err != nil {
		return nil, err
	}

	if _, err := w.versions.Snapshot(t.ID, t.DraftContent, t.SEO(), models.LabelPreRollback, actorID); err != nil {
		return nil, fmt.Errorf("pre-rollback backup: %w", err)
	}

	t.DraftContent = models.CloneContent(version.Content)
	t.SEOTitle = version.SEOTitle
	t.SEODescription = version.SEODescription
	t.SEOKeywords = version.SEOKeywords
	return w.templates.UpdateDraft(t)
}
