package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/capscollective/portal/internal/auth"
	"github.com/capscollective/portal/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	BearerAuth  *auth.BearerMiddleware
	Users       store.UserStoreIface
	Skills      *store.SkillStore
	Connections *store.ConnectionStore
	Invitations store.InvitationStoreIface
	Settings    *store.SettingStore
	Logger      *logrus.Logger
}

// NewAPIRouter creates a chi sub-router for /api/v1.
// All routes return application/json. Member and admin routes require Bearer
// token authentication; the bootstrap and deprecated routes do not.
func NewAPIRouter(deps Deps) chi.Router {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()

	// All API responses are JSON.
	r.Use(jsonContentType)

	// Unauthenticated surface: one-time admin bootstrap and removed endpoints.
	registerSetupRoutes(r, deps)
	registerDeprecatedRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(deps.BearerAuth.Authenticate)

		registerMemberRoutes(r, deps)
		registerConnectionRoutes(r, deps)
		registerInvitationRoutes(r, deps)
		registerAdminRoutes(r, deps)
	})

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
