package store_test

import (
	"context"
	"testing"

	"github.com/capscollective/portal/internal/store"
	"github.com/capscollective/portal/internal/testutil"
)

func TestDeriveSkillSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Go", "go"},
		{"Game Design", "game-design"},
		{"  3D Modelling  ", "3d-modelling"},
		{"C++", "c"},
		{"unity_engine", "unity-engine"},
		{"a  --  b", "a-b"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := store.DeriveSkillSlug(tt.name); got != tt.want {
			t.Errorf("DeriveSkillSlug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSkillStore_Upsert_SharedBySlug(t *testing.T) {
	db := testutil.NewTestDB(t)
	skills := store.NewSkillStore(db)
	ctx := context.Background()

	first, err := skills.Upsert(ctx, "Game Design")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Different spelling, same slug: must resolve to the existing row.
	second, err := skills.Upsert(ctx, "game design")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ids differ for the same slug: %q vs %q", first.ID, second.ID)
	}

	all, err := skills.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("skills = %d rows, want 1", len(all))
	}
}

func TestSkillStore_SetForUser_Replaces(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := store.NewUserStore(db)
	skills := store.NewSkillStore(db)
	ctx := context.Background()

	u, err := users.Upsert(ctx, "iss", "sub-1", "alice@example.com", "Alice", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if err := skills.SetForUser(ctx, u.ID, []string{"Go", "SQL", "Go"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := skills.ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Duplicate "Go" collapses.
	if len(got) != 2 {
		t.Fatalf("skills = %d, want 2", len(got))
	}

	if err := skills.SetForUser(ctx, u.ID, []string{"Music"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err = skills.ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Music" {
		t.Errorf("skills after replace = %+v, want just Music", got)
	}
}

func TestSkillStore_SetForUser_Empty(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := store.NewUserStore(db)
	skills := store.NewSkillStore(db)
	ctx := context.Background()

	u, err := users.Upsert(ctx, "iss", "sub-1", "alice@example.com", "Alice", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := skills.SetForUser(ctx, u.ID, []string{"Go"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := skills.SetForUser(ctx, u.ID, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, err := skills.ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("skills = %+v, want none", got)
	}
}
