package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"storepress/internal/models"
)

// versionColumns lists all columns for template_versions SELECTs.
const versionColumns = `id, template_id, seq, content,
	seo_title, seo_description, seo_keywords, label, created_by, created_at`

// VersionStore provides bounded per-template snapshot history. It behaves
// as a fixed-capacity ring: appending beyond the capacity evicts the
// oldest entries first.
type VersionStore struct {
	db       *sql.DB
	capacity int
}

// NewVersionStore creates a VersionStore with the default capacity.
func NewVersionStore(db *sql.DB) *VersionStore {
	return &VersionStore{db: db, capacity: models.VersionCapacity}
}

// scanVersion scans a single template_versions row into a TemplateVersion.
func scanVersion(scanner interface{ Scan(...any) error }) (*models.TemplateVersion, error) {
	var v models.TemplateVersion
	var content []byte
	err := scanner.Scan(
		&v.ID, &v.TemplateID, &v.Seq, &content,
		&v.SEOTitle, &v.SEODescription, &v.SEOKeywords, &v.Label, &v.CreatedBy, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Content = json.RawMessage(content)
	return &v, nil
}

// Snapshot appends a version holding an independent copy of the given
// content and SEO metadata, then trims the history to capacity. Empty
// content is a no-op: there is nothing worth restoring.
func (s *VersionStore) Snapshot(templateID uuid.UUID, content json.RawMessage, seo models.SEO, label string, createdBy uuid.UUID) (*models.TemplateVersion, error) {
	if models.ContentEmpty(content) {
		return nil, nil
	}

	row := s.db.QueryRow(`
		INSERT INTO template_versions (
			template_id, content, seo_title, seo_description, seo_keywords, label, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+versionColumns,
		templateID, []byte(models.CloneContent(content)),
		seo.Title, seo.Description, seo.Keywords, label, createdBy,
	)
	v, err := scanVersion(row)
	if err != nil {
		return nil, fmt.Errorf("snapshot version: %w", err)
	}

	if err := s.Trim(templateID); err != nil {
		return nil, err
	}
	return v, nil
}

// Trim drops the oldest versions until at most the capacity remain.
func (s *VersionStore) Trim(templateID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM template_versions
		WHERE template_id = $1 AND seq NOT IN (
			SELECT seq FROM template_versions
			WHERE template_id = $1
			ORDER BY seq DESC
			LIMIT $2
		)
	`, templateID, s.capacity)
	if err != nil {
		return fmt.Errorf("trim versions: %w", err)
	}
	return nil
}

// ListByTemplateID returns all versions for a template in insertion order,
// oldest first. The position in this slice is the rollback index.
func (s *VersionStore) ListByTemplateID(templateID uuid.UUID) ([]*models.TemplateVersion, error) {
	rows, err := s.db.Query(`
		SELECT `+versionColumns+`
		FROM template_versions
		WHERE template_id = $1
		ORDER BY seq ASC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.TemplateVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// FindByIndex returns the version at the given insertion-order index
// (0 = oldest surviving entry). Out-of-range indexes fail with
// ErrVersionNotFound.
func (s *VersionStore) FindByIndex(templateID uuid.UUID, index int) (*models.TemplateVersion, error) {
	if index < 0 {
		return nil, models.ErrVersionNotFound
	}

	row := s.db.QueryRow(`
		SELECT `+versionColumns+`
		FROM template_versions
		WHERE template_id = $1
		ORDER BY seq ASC
		OFFSET $2 LIMIT 1
	`, templateID, index)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find version by index: %w", err)
	}
	return v, nil
}

// Count returns the number of versions retained for a template.
func (s *VersionStore) Count(templateID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM template_versions WHERE template_id = $1`, templateID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return count, nil
}
