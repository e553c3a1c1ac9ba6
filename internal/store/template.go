package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"storepress/internal/models"
)

// templateColumns lists all columns for templates SELECTs.
const templateColumns = `id, theme_id, page_type, slug, draft_content, published_content,
	status, seo_title, seo_description, seo_keywords, row_version,
	published_at, created_at, updated_at`

// TemplateStore handles all template-related database operations.
// Templates are keyed by (theme, page type, slug); the slug is the empty
// string for every page type except custom.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// scanTemplate scans a single templates row into a Template.
func scanTemplate(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	var t models.Template
	var draft, published []byte
	err := scanner.Scan(
		&t.ID, &t.ThemeID, &t.PageType, &t.Slug, &draft, &published,
		&t.Status, &t.SEOTitle, &t.SEODescription, &t.SEOKeywords, &t.RowVersion,
		&t.PublishedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.DraftContent = json.RawMessage(draft)
	t.PublishedContent = json.RawMessage(published)
	return &t, nil
}

// FindByID retrieves a template by its UUID. Returns nil if not found.
func (s *TemplateStore) FindByID(id uuid.UUID) (*models.Template, error) {
	row := s.db.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// FindByKey retrieves a template by its composite key. Returns nil if not found.
func (s *TemplateStore) FindByKey(themeID uuid.UUID, pageType models.PageType, slug string) (*models.Template, error) {
	row := s.db.QueryRow(`
		SELECT `+templateColumns+`
		FROM templates
		WHERE theme_id = $1 AND page_type = $2 AND slug = $3
	`, themeID, pageType, slug)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by key: %w", err)
	}
	return t, nil
}

// ListByTheme returns all templates for a theme, ordered by page type and slug.
func (s *TemplateStore) ListByTheme(themeID uuid.UUID) ([]models.Template, error) {
	rows, err := s.db.Query(`
		SELECT `+templateColumns+`
		FROM templates
		WHERE theme_id = $1
		ORDER BY page_type, slug
	`, themeID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var items []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// FindOrCreate returns the template for the composite key, creating an
// empty draft if none exists. Creation races are absorbed by the unique
// key: the loser of a concurrent insert re-reads the winner's row.
func (s *TemplateStore) FindOrCreate(themeID uuid.UUID, pageType models.PageType, slug string, draft json.RawMessage) (*models.Template, error) {
	existing, err := s.FindByKey(themeID, pageType, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	row := s.db.QueryRow(`
		INSERT INTO templates (theme_id, page_type, slug, draft_content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+templateColumns,
		themeID, pageType, slug, nullableContent(draft),
	)
	t, err := scanTemplate(row)
	if err == nil {
		return t, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// Lost a creation race; the winner's row satisfies the caller.
		return s.FindByKey(themeID, pageType, slug)
	}
	return nil, fmt.Errorf("create template: %w", err)
}

// UpdateDraft replaces the draft content and SEO metadata, forces draft
// status, and stamps updated_at. The update is guarded by the caller's
// observed row version; a concurrent write makes it fail with ErrConflict.
func (s *TemplateStore) UpdateDraft(t *models.Template) (*models.Template, error) {
	row := s.db.QueryRow(`
		UPDATE templates SET
			draft_content = $1, status = 'draft',
			seo_title = $2, seo_description = $3, seo_keywords = $4,
			row_version = row_version + 1, updated_at = NOW()
		WHERE id = $5 AND row_version = $6
		RETURNING `+templateColumns,
		nullableContent(t.DraftContent), t.SEOTitle, t.SEODescription, t.SEOKeywords,
		t.ID, t.RowVersion,
	)
	updated, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, s.versionMismatch(t.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update draft: %w", err)
	}
	return updated, nil
}

// Promote copies the given content into the published snapshot, sets
// published status, and stamps published_at and updated_at together.
// Guarded by the caller's observed row version like UpdateDraft, so a
// reader sees either the old published content or the fully updated row.
func (s *TemplateStore) Promote(t *models.Template, published json.RawMessage) (*models.Template, error) {
	row := s.db.QueryRow(`
		UPDATE templates SET
			published_content = $1, status = 'published',
			row_version = row_version + 1,
			published_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND row_version = $3
		RETURNING `+templateColumns,
		nullableContent(published), t.ID, t.RowVersion,
	)
	updated, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, s.versionMismatch(t.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("promote template: %w", err)
	}
	return updated, nil
}

// versionMismatch distinguishes a stale row version from a deleted row.
func (s *TemplateStore) versionMismatch(id uuid.UUID) error {
	existing, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return models.ErrNotFound
	}
	return models.ErrConflict
}

// nullableContent maps empty layout content to SQL NULL so the JSONB
// columns never hold empty strings.
func nullableContent(raw json.RawMessage) any {
	if models.ContentEmpty(raw) {
		return nil
	}
	return []byte(raw)
}
