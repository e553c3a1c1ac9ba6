// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"storepress/internal/database"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "storepress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "storepress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestTheme inserts an inactive theme and registers cleanup that
// removes it along with its templates and their versions.
func createTestTheme(t *testing.T, db *sql.DB, name string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO themes (name, is_active, created_by)
		VALUES ($1, FALSE, $2)
		RETURNING id
	`, name, uuid.New()).Scan(&id)
	if err != nil {
		t.Fatalf("create test theme: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM templates WHERE theme_id = $1", id)
		db.Exec("DELETE FROM themes WHERE id = $1", id)
	})
	return id
}

// cleanThemes removes test themes by name. Call in t.Cleanup().
func cleanThemes(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM themes WHERE name = $1", name)
	}
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// restoreActiveTheme snapshots which theme is currently active and
// registers cleanup that reactivates it. Tests that call Activate or
// EnsureActive would otherwise leave the shared database switched.
func restoreActiveTheme(t *testing.T, db *sql.DB) {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow("SELECT id FROM themes WHERE is_active = TRUE LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return
	}
	if err != nil {
		t.Fatalf("snapshot active theme: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("UPDATE themes SET is_active = FALSE WHERE is_active = TRUE AND id <> $1", id)
		db.Exec("UPDATE themes SET is_active = TRUE WHERE id = $1", id)
	})
}
