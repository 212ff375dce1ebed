package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/capscollective/portal/internal/store"
)

// invitationsAPIHandler provides REST handlers for member-facing invitations.
type invitationsAPIHandler struct {
	users       store.UserStoreIface
	invitations store.InvitationStoreIface
	log         *logrus.Logger
}

func registerInvitationRoutes(r chi.Router, deps Deps) {
	h := &invitationsAPIHandler{users: deps.Users, invitations: deps.Invitations, log: deps.Logger}

	r.Post("/invitations", h.Create)
}

// Create records an invitation from the caller to a prospective member.
// POST /api/v1/invitations
func (h *invitationsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentMember(w, r, h.users, h.log)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	inv, err := h.invitations.Create(r.Context(), email, strings.TrimSpace(req.Name), req.Message, user.ID)
	if err != nil {
		h.log.WithError(err).Error("invitation create failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, InvitationResponse{
		Success: true,
		Invitation: InvitationItem{
			ID:        inv.ID,
			Email:     inv.Email,
			Name:      inv.Name,
			Message:   inv.Message,
			CreatedAt: inv.CreatedAt,
		},
	})
}
