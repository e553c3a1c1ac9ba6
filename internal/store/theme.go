package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"storepress/internal/models"
)

// ThemeStore handles all theme database operations and owns the
// single-active-theme invariant.
type ThemeStore struct {
	db *sql.DB
}

// NewThemeStore creates a new ThemeStore.
func NewThemeStore(db *sql.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

// themeColumns lists the columns selected in theme queries.
const themeColumns = `id, name, is_active, created_by, last_published_at, created_at, updated_at`

// scanTheme scans a theme row from the result set.
func scanTheme(scanner interface{ Scan(...any) error }) (*models.Theme, error) {
	var t models.Theme
	err := scanner.Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedBy, &t.LastPublishedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all themes ordered by creation date ascending.
func (s *ThemeStore) List() ([]models.Theme, error) {
	rows, err := s.db.Query(`
		SELECT ` + themeColumns + `
		FROM themes
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var items []models.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// FindByID retrieves a theme by its UUID. Returns nil if not found.
func (s *ThemeStore) FindByID(id uuid.UUID) (*models.Theme, error) {
	row := s.db.QueryRow(`SELECT `+themeColumns+` FROM themes WHERE id = $1`, id)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find theme by id: %w", err)
	}
	return t, nil
}

// FindActive returns the currently active theme, or nil if none is active.
func (s *ThemeStore) FindActive() (*models.Theme, error) {
	row := s.db.QueryRow(`SELECT ` + themeColumns + ` FROM themes WHERE is_active = TRUE LIMIT 1`)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active theme: %w", err)
	}
	return t, nil
}

// Create inserts a new theme. The first theme ever created becomes active
// in the same statement, so there is no window where themes exist but none
// is active.
func (s *ThemeStore) Create(name string, createdBy uuid.UUID) (*models.Theme, error) {
	row := s.db.QueryRow(`
		INSERT INTO themes (name, is_active, created_by)
		VALUES ($1, NOT EXISTS (SELECT 1 FROM themes WHERE is_active = TRUE), $2)
		RETURNING `+themeColumns,
		name, createdBy,
	)
	t, err := scanTheme(row)
	if err != nil {
		return nil, fmt.Errorf("create theme: %w", err)
	}
	return t, nil
}

// Activate sets a theme as active and deactivates all others. Uses a
// transaction so readers never observe zero or two active themes.
func (s *ThemeStore) Activate(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE themes SET is_active = FALSE WHERE is_active = TRUE AND id <> $1`, id); err != nil {
		return fmt.Errorf("deactivate themes: %w", err)
	}

	result, err := tx.Exec(`UPDATE themes SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate theme: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return models.ErrNotFound
	}

	return tx.Commit()
}

// EnsureActive returns the active theme, self-healing when none is marked
// active but at least one exists: the oldest theme is promoted, persisted,
// and the promotion is logged. Returns models.ErrNotFound only when no
// themes exist at all.
func (s *ThemeStore) EnsureActive() (*models.Theme, error) {
	active, err := s.FindActive()
	if err != nil {
		return nil, err
	}
	if active != nil {
		return active, nil
	}

	row := s.db.QueryRow(`SELECT ` + themeColumns + ` FROM themes ORDER BY created_at ASC LIMIT 1`)
	oldest, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find oldest theme: %w", err)
	}

	if err := s.Activate(oldest.ID); err != nil {
		return nil, fmt.Errorf("self-heal activate: %w", err)
	}
	slog.Warn("no active theme found, promoted oldest", "theme_id", oldest.ID, "name", oldest.Name)

	oldest.IsActive = true
	return oldest, nil
}

// TouchLastPublished stamps the theme's last-published timestamp. Called
// by the publish workflow as a side effect of a successful publish.
func (s *ThemeStore) TouchLastPublished(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE themes SET last_published_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last published: %w", err)
	}
	return nil
}
