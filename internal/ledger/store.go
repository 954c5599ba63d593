package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Submission is one credited waste drop-off.
type Submission struct {
	ID          string `json:"-" db:"id"`
	UserID      string `json:"-" db:"user_id"`
	BinID       string `json:"bin_id" db:"bin_id"`
	Category    string `json:"category" db:"category"`
	ItemName    string `json:"item_name" db:"item_name"`
	Credits     int    `json:"credits" db:"credits"`
	SubmittedAt int64  `json:"timestamp" db:"submitted_at"`
}

// Account is a user's credit balance plus their submission history.
type Account struct {
	UserID        string       `json:"user_id"`
	Credits       int          `json:"credits"`
	RecycledItems []Submission `json:"recycled_items"`
}

// Store is the credit/ledger bookkeeping per end user: an accumulator and
// an append-only submission log, backed by Postgres.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps a connected database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// ensureUser lazily creates a credit account on first contact.
func ensureUser(tx *sqlx.Tx, userID string) error {
	_, err := tx.Exec(`
		INSERT INTO users (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, userID)
	return err
}

// RecordSubmission credits a user for a classified item and appends the
// submission record. Returns the updated account.
func (s *Store) RecordSubmission(userID, binID, category, itemName string, credits int) (Account, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return Account{}, fmt.Errorf("begin submission tx: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUser(tx, userID); err != nil {
		return Account{}, fmt.Errorf("ensure user %s: %w", userID, err)
	}

	now := time.Now().Unix()
	_, err = tx.Exec(`
		INSERT INTO submissions (id, user_id, bin_id, category, item_name, credits, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), userID, binID, category, itemName, credits, now)
	if err != nil {
		return Account{}, fmt.Errorf("insert submission: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE users SET credits = credits + $1, updated_at = $2 WHERE id = $3
	`, credits, now, userID)
	if err != nil {
		return Account{}, fmt.Errorf("update credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Account{}, fmt.Errorf("commit submission: %w", err)
	}

	return s.GetAccount(userID)
}

// GetAccount returns a user's balance and history, creating the account
// if it does not exist yet.
func (s *Store) GetAccount(userID string) (Account, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return Account{}, fmt.Errorf("begin account tx: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUser(tx, userID); err != nil {
		return Account{}, fmt.Errorf("ensure user %s: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return Account{}, fmt.Errorf("commit account: %w", err)
	}

	account := Account{UserID: userID, RecycledItems: []Submission{}}
	if err := s.db.Get(&account.Credits, "SELECT credits FROM users WHERE id = $1", userID); err != nil {
		return Account{}, fmt.Errorf("read credits: %w", err)
	}

	err = s.db.Select(&account.RecycledItems, `
		SELECT id, user_id, bin_id, category, item_name, credits, submitted_at
		FROM submissions
		WHERE user_id = $1
		ORDER BY submitted_at ASC, id ASC
	`, userID)
	if err != nil {
		return Account{}, fmt.Errorf("read submissions: %w", err)
	}

	return account, nil
}
