package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/capscollective/portal/internal/store"
)

const (
	cookieState        = "__auth_state"
	cookieCodeVerifier = "__auth_pkce"
	cookieRedirect     = "__auth_redirect"
)

// Handlers provides HTTP handlers for the OIDC onboarding flow.
type Handlers struct {
	provider      *Provider
	sessions      *scs.SessionManager
	users         store.UserStoreIface
	adminEmail    string
	secureCookies bool
}

// NewHandlers creates a new Handlers with the given dependencies.
// adminEmail, if non-empty, elevates the matching account at first login.
func NewHandlers(p *Provider, sm *scs.SessionManager, us store.UserStoreIface, adminEmail string, secureCookies bool) *Handlers {
	return &Handlers{provider: p, sessions: sm, users: us, adminEmail: adminEmail, secureCookies: secureCookies}
}

// Login initiates the OIDC authorization code flow with PKCE.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := GenerateState()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	verifier, challenge, err := GeneratePKCE()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Store state and verifier in short-lived cookies
	h.setPreAuthCookie(w, cookieState, state)
	h.setPreAuthCookie(w, cookieCodeVerifier, verifier)

	// Preserve the redirect URL
	redirect := r.URL.Query().Get("redirect")
	if redirect == "" {
		redirect = "/"
	}
	h.setPreAuthCookie(w, cookieRedirect, redirect)

	http.Redirect(w, r, h.provider.AuthCodeURL(state, challenge), http.StatusFound)
}

// Callback handles the OIDC provider redirect after authentication.
// It upserts the member record and establishes a server-side session.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	// Validate state
	stateCookie, err := r.Cookie(cookieState)
	if err != nil || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	// Get PKCE verifier
	verifierCookie, err := r.Cookie(cookieCodeVerifier)
	if err != nil {
		http.Error(w, "missing code verifier", http.StatusBadRequest)
		return
	}

	// Exchange code for tokens
	identity, issuer, err := h.provider.Exchange(r.Context(), r.URL.Query().Get("code"), verifierCookie.Value)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	// Upsert member record
	user, err := h.users.Upsert(r.Context(), issuer, identity.Subject, identity.Email, identity.Name, h.adminEmail)
	if err != nil {
		http.Error(w, "member record error", http.StatusInternalServerError)
		return
	}

	// Create session
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	h.sessions.Put(r.Context(), SessionUserIDKey, user.ID)

	// Clear pre-auth cookies
	clearCookie(w, cookieState)
	clearCookie(w, cookieCodeVerifier)

	// Redirect
	redirectCookie, err := r.Cookie(cookieRedirect)
	redirect := "/"
	if err == nil && redirectCookie.Value != "" {
		redirect = redirectCookie.Value
	}
	clearCookie(w, cookieRedirect)

	http.Redirect(w, r, redirect, http.StatusFound)
}

// Logout destroys the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		http.Error(w, "logout error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me returns the session member's profile as JSON, for the front-end to probe
// login state after the callback redirect.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	userID := h.sessions.GetString(r.Context(), SessionUserIDKey)
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		// Session references a deleted member — destroy it.
		_ = h.sessions.Destroy(r.Context())
		writeUnauthorized(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":     true,
		"id":          user.ID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"isAdmin":     user.IsAdmin,
	})
}

func (h *Handlers) setPreAuthCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   300, // 5 minutes
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}
