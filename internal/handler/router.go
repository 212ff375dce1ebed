package handler

import (
	"encoding/json"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capscollective/portal/internal/auth"
	"github.com/capscollective/portal/internal/build"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthHandlers   *auth.Handlers
	API            chi.Router
}

// NewRouter assembles the full chi router: onboarding routes, operational
// endpoints, and the /api/v1 mount.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(deps.SessionManager.LoadAndSave)

	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())

	// Onboarding routes (no auth required)
	r.Get("/auth/login", deps.AuthHandlers.Login)
	r.Get("/auth/callback", deps.AuthHandlers.Callback)
	r.Post("/auth/logout", deps.AuthHandlers.Logout)
	r.Get("/auth/me", deps.AuthHandlers.Me)

	r.Get("/", root)

	r.Mount("/api/v1", deps.API)

	return r
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "status": "ok"})
}

func root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"service": "caps-portal",
		"version": build.Version,
	})
}
