package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// User represents a member record. The record is keyed by the identity
// provider's stable subject identifier; is_admin is the single privilege flag
// consulted by the admin gate.
type User struct {
	ID          string    `db:"id"`
	Issuer      string    `db:"issuer"`
	Subject     string    `db:"subject"`
	Email       string    `db:"email"`
	DisplayName string    `db:"display_name"`
	Bio         string    `db:"bio"`
	IsAdmin     bool      `db:"is_admin"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// UserStore is the sqlx-backed implementation of UserStoreIface.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// Upsert creates or updates a member record on OIDC login.
// adminEmail: if non-empty and matches email on INSERT, is_admin is set.
func (s *UserStore) Upsert(ctx context.Context, issuer, subject, email, displayName, adminEmail string) (*User, error) {
	isAdmin := adminEmail != "" && email == adminEmail
	id := uuid.New().String()
	now := time.Now().UTC()

	// The UPDATE clause deliberately omits is_admin so returning members keep
	// their existing privilege; the flag above applies to new records only.
	// MySQL has no ON CONFLICT clause and needs its own upsert form.
	query := `
		INSERT INTO users (id, issuer, subject, email, display_name, bio, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '', ?, ?, ?)
		ON CONFLICT (subject) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			updated_at = excluded.updated_at
	`
	if s.db.DriverName() == "mysql" {
		query = `
		INSERT INTO users (id, issuer, subject, email, display_name, bio, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '', ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			email = VALUES(email),
			display_name = VALUES(display_name),
			updated_at = VALUES(updated_at)
		`
	}
	_, err := s.db.ExecContext(ctx, s.q(query), id, issuer, subject, email, displayName, isAdmin, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetBySubject(ctx, subject)
}

// GetByID returns the member matching id, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetBySubject returns the member matching the identity provider subject, or ErrNotFound.
func (s *UserStore) GetBySubject(ctx context.Context, subject string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE subject = ?`), subject)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the member matching email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE email = ?`), email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns up to limit members ordered by id, starting after afterID.
// An empty afterID starts from the beginning.
func (s *UserStore) List(ctx context.Context, afterID string, limit int) ([]*User, error) {
	var users []*User
	err := s.db.SelectContext(ctx, &users, s.q(`
		SELECT * FROM users WHERE id > ? ORDER BY id ASC LIMIT ?
	`), afterID, limit)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile sets the display name and bio for the given member and returns
// the updated record.
func (s *UserStore) UpdateProfile(ctx context.Context, id, displayName, bio string) (*User, error) {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE users SET display_name = ?, bio = ?, updated_at = ? WHERE id = ?
	`), displayName, bio, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SetAdmin grants the admin flag to the given member and returns the updated
// record. Granting to a member who is already an admin is a no-op, not an
// error. Returns ErrNotFound if the member does not exist.
func (s *UserStore) SetAdmin(ctx context.Context, id string) (*User, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?
	`), true, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// IsAdminBySubject reports whether a member record exists for subject with the
// admin flag set. A missing record is "not admin", not an error; only an
// underlying read failure returns a non-nil error.
func (s *UserStore) IsAdminBySubject(ctx context.Context, subject string) (bool, error) {
	var isAdmin bool
	err := s.db.GetContext(ctx, &isAdmin, s.q(`SELECT is_admin FROM users WHERE subject = ?`), subject)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}

// HasAdmin reports whether at least one member has the admin flag set.
func (s *UserStore) HasAdmin(ctx context.Context) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM users WHERE is_admin = ?`), true)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
