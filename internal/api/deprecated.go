package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// registerDeprecatedRoutes pins permanently removed endpoints to a fixed
// 410 Gone payload regardless of method, signaling permanent removal rather
// than transient failure.
func registerDeprecatedRoutes(r chi.Router) {
	r.HandleFunc("/notifications", gone)
	r.HandleFunc("/notifications/*", gone)
}

func gone(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusGone, "notifications have been removed from the portal")
}
