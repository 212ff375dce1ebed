package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateConnection is returned when a connection between the two
	// members already exists.
	ErrDuplicateConnection = errors.New("members are already connected")

	// ErrSelfConnection is returned when a member attempts to connect to themselves.
	ErrSelfConnection = errors.New("cannot connect a member to themselves")
)

// UserStoreIface exposes all member data operations.
// No handler MAY query the DB directly; all access goes through this interface.
type UserStoreIface interface {
	Upsert(ctx context.Context, issuer, subject, email, displayName, adminEmail string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetBySubject(ctx context.Context, subject string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, afterID string, limit int) ([]*User, error)
	UpdateProfile(ctx context.Context, id, displayName, bio string) (*User, error)
	SetAdmin(ctx context.Context, id string) (*User, error)
	IsAdminBySubject(ctx context.Context, subject string) (bool, error)
	HasAdmin(ctx context.Context) (bool, error)
}

// InvitationStoreIface exposes invitation operations.
type InvitationStoreIface interface {
	Create(ctx context.Context, email, name, message, createdBy string) (*Invitation, error)
	ListAll(ctx context.Context) ([]*Invitation, error)
	Count(ctx context.Context) (int, error)
	ClearAll(ctx context.Context) (int, error)
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
