package database

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// SeedUsers creates the default admin login and the demo credit account.
func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}
	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
		log.Println("⚠️  ADMIN_PASSWORD not set, using default (change this!)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO users (id, email, password, name, role)
		VALUES ('admin', 'admin@trashnet.local', $1, 'Fleet Admin', 'admin')
	`, string(hash))
	if err != nil {
		return err
	}

	// Demo end-user account; more are created lazily on first submission.
	_, err = db.Exec(`
		INSERT INTO users (id, name, role) VALUES ('user1', 'Demo User', 'user')
	`)
	if err != nil {
		return err
	}

	log.Println("🌱 Seeded admin and demo user accounts")
	return nil
}
