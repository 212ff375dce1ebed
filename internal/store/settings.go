package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// AccessPasswordKey is the settings key holding the argon2id hash of the
// community access password.
const AccessPasswordKey = "access_password_hash"

// SettingStore is a small key/value store for portal-wide settings.
type SettingStore struct {
	db *sqlx.DB
}

func NewSettingStore(db *sqlx.DB) *SettingStore {
	return &SettingStore{db: db}
}

func (s *SettingStore) q(query string) string { return s.db.Rebind(query) }

// Get returns the value for key, or ErrNotFound.
func (s *SettingStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.q(`SELECT value FROM settings WHERE name = ?`), key)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set writes the value for key, creating the row if needed.
func (s *SettingStore) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()

	// MySQL has no ON CONFLICT clause and needs its own upsert form.
	query := `
		INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if s.db.DriverName() == "mysql" {
		query = `
		INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			value = VALUES(value),
			updated_at = VALUES(updated_at)
		`
	}
	_, err := s.db.ExecContext(ctx, s.q(query), key, value, now)
	return err
}
