package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticVerifier struct {
	identity *Identity
	err      error
}

func (v *staticVerifier) Verify(context.Context, string) (*Identity, error) {
	return v.identity, v.err
}

func TestBearerMiddleware_MissingOrMalformedHeader(t *testing.T) {
	m := NewBearerMiddleware(&staticVerifier{identity: &Identity{Subject: "sub-1"}})
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a credential")
	}))

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, rec.Code, http.StatusUnauthorized)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("header %q: content-type = %q", header, ct)
		}
	}
}

func TestBearerMiddleware_RejectedToken(t *testing.T) {
	m := NewBearerMiddleware(&staticVerifier{err: errors.New("expired")})
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with a rejected token")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestBearerMiddleware_ValidToken(t *testing.T) {
	want := &Identity{Subject: "sub-1", Email: "alice@example.com"}
	m := NewBearerMiddleware(&staticVerifier{identity: want})

	var got *Identity
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got == nil || got.Subject != want.Subject || got.Email != want.Email {
		t.Errorf("identity = %+v, want %+v", got, want)
	}
}

func TestIdentityFromContext_Absent(t *testing.T) {
	if id := IdentityFromContext(context.Background()); id != nil {
		t.Errorf("identity = %+v, want nil", id)
	}
}
