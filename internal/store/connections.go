package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Connection represents a directed connection from one member to another.
type Connection struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PeerID    string    `db:"peer_id"`
	CreatedAt time.Time `db:"created_at"`
}

// ConnectionStore is the sqlx-backed store for member connections.
type ConnectionStore struct {
	db *sqlx.DB
}

func NewConnectionStore(db *sqlx.DB) *ConnectionStore {
	return &ConnectionStore{db: db}
}

func (s *ConnectionStore) q(query string) string { return s.db.Rebind(query) }

// Create records a connection from userID to peerID. Returns
// ErrSelfConnection when the two are the same member, ErrNotFound when the
// peer does not exist, and ErrDuplicateConnection when the pair is already
// connected.
func (s *ConnectionStore) Create(ctx context.Context, userID, peerID string) (*Connection, error) {
	if userID == peerID {
		return nil, ErrSelfConnection
	}

	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM users WHERE id = ?`), peerID); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO connections (id, user_id, peer_id, created_at) VALUES (?, ?, ?, ?)
	`), id, userID, peerID, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateConnection
		}
		return nil, err
	}

	return &Connection{ID: id, UserID: userID, PeerID: peerID, CreatedAt: now}, nil
}

// GetByID returns the connection matching id, or ErrNotFound.
func (s *ConnectionStore) GetByID(ctx context.Context, id string) (*Connection, error) {
	var c Connection
	err := s.db.GetContext(ctx, &c, s.q(`SELECT * FROM connections WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForUser returns all connections originating from the given member,
// newest first.
func (s *ConnectionStore) ListForUser(ctx context.Context, userID string) ([]*Connection, error) {
	var conns []*Connection
	err := s.db.SelectContext(ctx, &conns, s.q(`
		SELECT * FROM connections WHERE user_id = ? ORDER BY created_at DESC, id DESC
	`), userID)
	if err != nil {
		return nil, err
	}
	return conns, nil
}

// Delete removes a connection. Returns ErrNotFound if the connection does not
// exist or is not owned by the given member.
func (s *ConnectionStore) Delete(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM connections WHERE id = ? AND user_id = ?
	`), id, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
