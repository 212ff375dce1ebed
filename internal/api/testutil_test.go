package api_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/capscollective/portal/internal/api"
	"github.com/capscollective/portal/internal/auth"
	"github.com/capscollective/portal/internal/store"
	"github.com/capscollective/portal/internal/testutil"
)

// fakeVerifier resolves bearer tokens from a fixed map, standing in for the
// identity provider.
type fakeVerifier struct {
	tokens map[string]*auth.Identity
}

func (v *fakeVerifier) Verify(_ context.Context, raw string) (*auth.Identity, error) {
	id, ok := v.tokens[raw]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return id, nil
}

// countingUserStore wraps a UserStoreIface and counts every call, so tests
// can assert that rejected requests never touch the store.
type countingUserStore struct {
	store.UserStoreIface
	calls atomic.Int64
}

func (s *countingUserStore) Upsert(ctx context.Context, issuer, subject, email, displayName, adminEmail string) (*store.User, error) {
	s.calls.Add(1)
	return s.UserStoreIface.Upsert(ctx, issuer, subject, email, displayName, adminEmail)
}

func (s *countingUserStore) GetByID(ctx context.Context, id string) (*store.User, error) {
	s.calls.Add(1)
	return s.UserStoreIface.GetByID(ctx, id)
}

func (s *countingUserStore) GetBySubject(ctx context.Context, subject string) (*store.User, error) {
	s.calls.Add(1)
	return s.UserStoreIface.GetBySubject(ctx, subject)
}

func (s *countingUserStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	s.calls.Add(1)
	return s.UserStoreIface.GetByEmail(ctx, email)
}

func (s *countingUserStore) List(ctx context.Context, afterID string, limit int) ([]*store.User, error) {
	s.calls.Add(1)
	return s.UserStoreIface.List(ctx, afterID, limit)
}

func (s *countingUserStore) UpdateProfile(ctx context.Context, id, displayName, bio string) (*store.User, error) {
	s.calls.Add(1)
	return s.UserStoreIface.UpdateProfile(ctx, id, displayName, bio)
}

func (s *countingUserStore) SetAdmin(ctx context.Context, id string) (*store.User, error) {
	s.calls.Add(1)
	return s.UserStoreIface.SetAdmin(ctx, id)
}

func (s *countingUserStore) IsAdminBySubject(ctx context.Context, subject string) (bool, error) {
	s.calls.Add(1)
	return s.UserStoreIface.IsAdminBySubject(ctx, subject)
}

func (s *countingUserStore) HasAdmin(ctx context.Context) (bool, error) {
	s.calls.Add(1)
	return s.UserStoreIface.HasAdmin(ctx)
}

// countingInvitationStore mirrors countingUserStore for invitations.
type countingInvitationStore struct {
	store.InvitationStoreIface
	calls atomic.Int64
}

func (s *countingInvitationStore) Create(ctx context.Context, email, name, message, createdBy string) (*store.Invitation, error) {
	s.calls.Add(1)
	return s.InvitationStoreIface.Create(ctx, email, name, message, createdBy)
}

func (s *countingInvitationStore) ListAll(ctx context.Context) ([]*store.Invitation, error) {
	s.calls.Add(1)
	return s.InvitationStoreIface.ListAll(ctx)
}

func (s *countingInvitationStore) Count(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return s.InvitationStoreIface.Count(ctx)
}

func (s *countingInvitationStore) ClearAll(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return s.InvitationStoreIface.ClearAll(ctx)
}

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router      http.Handler
	Users       *countingUserStore
	RawUsers    *store.UserStore
	Skills      *store.SkillStore
	Connections *store.ConnectionStore
	Invitations *countingInvitationStore
	Settings    *store.SettingStore
	Verifier    *fakeVerifier
}

// storeCalls returns the total number of data-store calls issued so far.
func (env *testEnv) storeCalls() int64 {
	return env.Users.calls.Load() + env.Invitations.calls.Load()
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores behind a fake verifier.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testutil.NewTestDB(t)

	rawUsers := store.NewUserStore(conn)
	users := &countingUserStore{UserStoreIface: rawUsers}
	skills := store.NewSkillStore(conn)
	connections := store.NewConnectionStore(conn)
	invitations := &countingInvitationStore{InvitationStoreIface: store.NewInvitationStore(conn)}
	settings := store.NewSettingStore(conn)

	verifier := &fakeVerifier{tokens: make(map[string]*auth.Identity)}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	router := api.NewAPIRouter(api.Deps{
		BearerAuth:  auth.NewBearerMiddleware(verifier),
		Users:       users,
		Skills:      skills,
		Connections: connections,
		Invitations: invitations,
		Settings:    settings,
		Logger:      log,
	})

	return &testEnv{
		Router:      router,
		Users:       users,
		RawUsers:    rawUsers,
		Skills:      skills,
		Connections: connections,
		Invitations: invitations,
		Settings:    settings,
		Verifier:    verifier,
	}
}

// seedUser creates a member record and returns it.
func seedUser(t *testing.T, env *testEnv, email string, isAdmin bool) *store.User {
	t.Helper()
	ctx := context.Background()
	u, err := env.RawUsers.Upsert(ctx, "test-issuer", "sub-"+email, email, "Test Member", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if isAdmin {
		u, err = env.RawUsers.SetAdmin(ctx, u.ID)
		if err != nil {
			t.Fatalf("set admin: %v", err)
		}
	}
	return u
}

// identityFor builds an identity using the same subject scheme as seedUser.
func identityFor(email string) *auth.Identity {
	return &auth.Identity{Subject: "sub-" + email, Email: email}
}

// seedToken registers a bearer token for the user with the fake verifier and
// returns the token value.
func seedToken(t *testing.T, env *testEnv, u *store.User) string {
	t.Helper()
	token := "tok-" + u.Email
	env.Verifier.tokens[token] = &auth.Identity{Subject: u.Subject, Email: u.Email}
	return token
}

// authRequest adds a Bearer token to the request.
func authRequest(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
