// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"storepress/internal/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "storepress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "storepress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// activateTestTheme creates a theme, makes it the active one, and
// restores the previously active theme on cleanup.
func activateTestTheme(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	var previous uuid.UUID
	hadPrevious := db.QueryRow("SELECT id FROM themes WHERE is_active = TRUE LIMIT 1").Scan(&previous) == nil

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO themes (name, is_active, created_by)
		VALUES ($1, FALSE, $2)
		RETURNING id
	`, "Handler Theme "+uuid.NewString()[:8], uuid.New()).Scan(&id)
	if err != nil {
		t.Fatalf("create theme: %v", err)
	}

	if _, err := db.Exec("UPDATE themes SET is_active = FALSE WHERE is_active = TRUE"); err != nil {
		t.Fatalf("deactivate themes: %v", err)
	}
	if _, err := db.Exec("UPDATE themes SET is_active = TRUE WHERE id = $1", id); err != nil {
		t.Fatalf("activate theme: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM templates WHERE theme_id = $1", id)
		db.Exec("DELETE FROM themes WHERE id = $1", id)
		if hadPrevious {
			db.Exec("UPDATE themes SET is_active = TRUE WHERE id = $1", previous)
		}
	})
	return id
}
