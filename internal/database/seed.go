package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user (prompted for 2FA setup on first login) and a starter theme
// that becomes the active one. No-op if users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@storepress.local", string(hash), "Admin", "admin", false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// First theme ever created becomes the active one.
	_, err = db.Exec(`
		INSERT INTO themes (name, is_active, created_by)
		VALUES ($1, TRUE, $2)
	`, "Default", adminID)
	if err != nil {
		return fmt.Errorf("seed insert theme: %w", err)
	}

	slog.Info("database seeded with default admin user and starter theme",
		"email", "admin@storepress.local",
		"password", "admin",
	)

	return nil
}
