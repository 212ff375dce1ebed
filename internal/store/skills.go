package store

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var skillSlugStripRe = regexp.MustCompile(`[^a-z0-9-]`)

// Skill represents a row in the skills table. Skills are shared across
// members; membership lives in the user_skills join table.
type Skill struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

// SkillStore is the sqlx-backed store for skills and member-skill assignment.
type SkillStore struct {
	db *sqlx.DB
}

func NewSkillStore(db *sqlx.DB) *SkillStore {
	return &SkillStore{db: db}
}

func (s *SkillStore) q(query string) string { return s.db.Rebind(query) }

// DeriveSkillSlug derives a URL-safe slug from a skill name:
// lowercase, replace spaces/underscores with hyphens, strip non-[a-z0-9-].
func DeriveSkillSlug(name string) string {
	sl := strings.ToLower(strings.TrimSpace(name))
	sl = strings.ReplaceAll(sl, " ", "-")
	sl = strings.ReplaceAll(sl, "_", "-")
	sl = skillSlugStripRe.ReplaceAllString(sl, "")
	// Collapse consecutive hyphens.
	for strings.Contains(sl, "--") {
		sl = strings.ReplaceAll(sl, "--", "-")
	}
	return strings.Trim(sl, "-")
}

// Upsert creates a skill if it doesn't exist (by slug), or returns the existing one.
func (s *SkillStore) Upsert(ctx context.Context, name string) (*Skill, error) {
	return upsertSkill(ctx, s.db, s.q, name)
}

// ListAll returns all skills ordered by name.
func (s *SkillStore) ListAll(ctx context.Context) ([]*Skill, error) {
	var skills []*Skill
	err := s.db.SelectContext(ctx, &skills, s.q(`SELECT * FROM skills ORDER BY name ASC`))
	if err != nil {
		return nil, err
	}
	return skills, nil
}

// ListForUser returns the skills assigned to the given member, ordered by name.
func (s *SkillStore) ListForUser(ctx context.Context, userID string) ([]*Skill, error) {
	var skills []*Skill
	err := s.db.SelectContext(ctx, &skills, s.q(`
		SELECT sk.* FROM skills sk
		JOIN user_skills us ON us.skill_id = sk.id
		WHERE us.user_id = ?
		ORDER BY sk.name ASC
	`), userID)
	if err != nil {
		return nil, err
	}
	return skills, nil
}

// SetForUser replaces the member's skill set with the given names. Unknown
// skills are created; duplicate names collapse to one slug. The replace is
// transactional so a failed write never leaves a half-updated profile.
func (s *SkillStore) SetForUser(ctx context.Context, userID string, names []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM user_skills WHERE user_id = ?`), userID); err != nil {
		return err
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		slug := DeriveSkillSlug(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		skill, err := upsertSkill(ctx, tx, s.q, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO user_skills (user_id, skill_id) VALUES (?, ?)
		`), userID, skill.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// upsertSkill works against either the pool or an open transaction.
func upsertSkill(ctx context.Context, q sqlx.ExtContext, rebind func(string) string, name string) (*Skill, error) {
	slug := DeriveSkillSlug(name)

	var existing Skill
	err := sqlx.GetContext(ctx, q, &existing, rebind(`SELECT * FROM skills WHERE slug = ?`), slug)
	if err == nil {
		return &existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = q.ExecContext(ctx, rebind(`
		INSERT INTO skills (id, name, slug, created_at) VALUES (?, ?, ?, ?)
	`), id, strings.TrimSpace(name), slug, now)
	if err != nil {
		// Race condition: another goroutine inserted first. Re-fetch.
		if isUniqueConstraintError(err) {
			if err := sqlx.GetContext(ctx, q, &existing, rebind(`SELECT * FROM skills WHERE slug = ?`), slug); err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}

	return &Skill{ID: id, Name: strings.TrimSpace(name), Slug: slug, CreatedAt: now}, nil
}
