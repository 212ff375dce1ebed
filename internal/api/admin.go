package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/capscollective/portal/internal/auth"
	"github.com/capscollective/portal/internal/metrics"
	"github.com/capscollective/portal/internal/store"
)

// adminAPIHandler provides REST handlers for admin-only endpoints.
type adminAPIHandler struct {
	users       store.UserStoreIface
	invitations store.InvitationStoreIface
	settings    *store.SettingStore
	log         *logrus.Logger
}

// registerAdminRoutes registers admin routes inside a chi Group behind the
// admin gate. Every route in the group runs the full chain: verified bearer
// identity (outer middleware), then the admin check, then per-route
// validation, then the mutation.
func registerAdminRoutes(r chi.Router, deps Deps) {
	h := &adminAPIHandler{
		users:       deps.Users,
		invitations: deps.Invitations,
		settings:    deps.Settings,
		log:         deps.Logger,
	}

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(h.requireAdmin)

		admin.Post("/change-password", h.ChangePassword)
		admin.Post("/set-admin", h.SetAdmin)
		admin.Get("/invitations", h.ListInvitations)
		admin.Delete("/invitations/clear", h.ClearInvitations)
	})
}

// requireAdmin enforces the admin flag on all routes in the group.
// The check runs strictly after authentication and before any mutation:
// no verified identity → 401, identity without the flag (or with no member
// record at all) → 403, and a store read failure → 500, never 403.
func (h *adminAPIHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := auth.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		isAdmin, err := h.users.IsAdminBySubject(r.Context(), identity.Subject)
		if err != nil {
			h.log.WithError(err).Error("admin check: member read failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !isAdmin {
			metrics.AdminForbiddenTotal.Inc()
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ChangePassword rotates the community access password.
// POST /api/v1/admin/change-password
//
// @Summary      Rotate the community access password (admin)
// @Description  Stores an argon2id hash of the new password. Requires admin.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        body  body      ChangePasswordRequest  true  "New password"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Security     BearerToken
// @Router       /admin/change-password [post]
func (h *adminAPIHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.log.WithError(err).Error("change-password: hash failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.settings.Set(r.Context(), store.AccessPasswordKey, hash); err != nil {
		h.log.WithError(err).Error("change-password: settings write failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.AdminActionsTotal.WithLabelValues("change_password").Inc()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// SetAdmin grants the admin flag to another member. Granting twice is a
// no-op, not an error.
// POST /api/v1/admin/set-admin
//
// @Summary      Grant admin to a member (admin)
// @Description  Sets the member's admin flag. Idempotent. Requires admin.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        body  body      SetAdminRequest  true  "Target member"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Security     BearerToken
// @Router       /admin/set-admin [post]
func (h *adminAPIHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	var req SetAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if _, err := h.users.SetAdmin(r.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		h.log.WithError(err).Error("set-admin: member update failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.AdminActionsTotal.WithLabelValues("set_admin").Inc()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// ListInvitations returns all pending invitations.
// GET /api/v1/admin/invitations
func (h *adminAPIHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	invs, err := h.invitations.ListAll(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list invitations failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := InvitationListResponse{Success: true, Invitations: make([]InvitationItem, 0, len(invs))}
	for _, inv := range invs {
		resp.Invitations = append(resp.Invitations, InvitationItem{
			ID:        inv.ID,
			Email:     inv.Email,
			Name:      inv.Name,
			Message:   inv.Message,
			CreatedAt: inv.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ClearInvitations removes every pending invitation as a concurrent fan-out
// and reports the count actually removed. A partial failure returns 500;
// completed deletes are not rolled back.
// DELETE /api/v1/admin/invitations/clear
//
// @Summary      Clear all pending invitations (admin)
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      500  {object}  errorBody
// @Security     BearerToken
// @Router       /admin/invitations/clear [delete]
func (h *adminAPIHandler) ClearInvitations(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.invitations.ClearAll(r.Context())
	metrics.InvitationsClearedTotal.Add(float64(cleared))
	if err != nil {
		h.log.WithError(err).WithField("cleared", cleared).Error("clear invitations: partial failure")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.AdminActionsTotal.WithLabelValues("clear_invitations").Inc()
	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Cleared %d invitations", cleared),
	})
}

// registerSetupRoutes registers the unauthenticated admin bootstrap route.
func registerSetupRoutes(r chi.Router, deps Deps) {
	h := &adminAPIHandler{users: deps.Users, log: deps.Logger}
	r.Get("/setup-admin", h.SetupAdmin)
}

// SetupAdmin grants the admin flag to the member matching the email query
// parameter. The route is a bootstrap aid only: it works while the portal has
// no admin at all and returns 403 once one exists, so it can never be used to
// elevate privileges on a running community.
// GET /api/v1/setup-admin?email=...
func (h *adminAPIHandler) SetupAdmin(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	hasAdmin, err := h.users.HasAdmin(r.Context())
	if err != nil {
		h.log.WithError(err).Error("setup-admin: admin count failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if hasAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		h.log.WithError(err).Error("setup-admin: member read failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := h.users.SetAdmin(r.Context(), user.ID); err != nil {
		h.log.WithError(err).Error("setup-admin: member update failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.AdminActionsTotal.WithLabelValues("setup_admin").Inc()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
