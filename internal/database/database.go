package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the Postgres connection backing the credit ledger. The
// bin fleet state never touches the database; it lives in memory for the
// lifetime of the process.
func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to ledger database...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Ledger database connection established")
	return db, nil
}

// Migrate creates the ledger tables if they do not exist.
func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// End-user credit accounts. Email/password are only set for
		// accounts that can log in to the admin surface; accounts created
		// lazily by waste submissions carry neither.
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE,
			password TEXT,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user' CHECK(role IN ('user', 'admin')),
			credits INT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Append-only record of credited waste submissions.
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			bin_id TEXT NOT NULL,
			category TEXT NOT NULL,
			item_name TEXT NOT NULL,
			credits INT NOT NULL,
			submitted_at BIGINT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id, submitted_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("✅ Ledger migrations completed")
	return nil
}
