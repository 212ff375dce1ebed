package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Invitation represents a pending invitation to join the collective.
type Invitation struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Message   string    `db:"message"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

// InvitationStore is the sqlx-backed implementation of InvitationStoreIface.
type InvitationStore struct {
	db *sqlx.DB
}

func NewInvitationStore(db *sqlx.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

func (s *InvitationStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new invitation record.
func (s *InvitationStore) Create(ctx context.Context, email, name, message, createdBy string) (*Invitation, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO invitations (id, email, name, message, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, email, name, message, createdBy, now)
	if err != nil {
		return nil, err
	}
	return &Invitation{ID: id, Email: email, Name: name, Message: message, CreatedBy: createdBy, CreatedAt: now}, nil
}

// ListAll returns all pending invitations, newest first.
func (s *InvitationStore) ListAll(ctx context.Context) ([]*Invitation, error) {
	var invs []*Invitation
	err := s.db.SelectContext(ctx, &invs, s.q(`
		SELECT * FROM invitations ORDER BY created_at DESC, id DESC
	`))
	if err != nil {
		return nil, err
	}
	return invs, nil
}

// Count returns the number of pending invitations.
func (s *InvitationStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM invitations`))
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ClearAll deletes every pending invitation as a fan-out of independent
// per-row deletes joined with wait-for-all semantics. It returns the number of
// rows actually removed; on a partial failure the count still reflects the
// deletes that completed (there is no rollback) alongside the first error.
func (s *InvitationStore) ClearAll(ctx context.Context) (int, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, s.q(`SELECT id FROM invitations`)); err != nil {
		return 0, err
	}

	var cleared atomic.Int64
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM invitations WHERE id = ?`), id)
			if err != nil {
				return err
			}
			cleared.Add(1)
			return nil
		})
	}

	// errgroup waits for every delete to settle; the first error (if any)
	// is reported after all goroutines finish.
	err := g.Wait()
	return int(cleared.Load()), err
}
