package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/capscollective/portal/internal/store"
)

// connectionsAPIHandler provides REST handlers for member connections.
type connectionsAPIHandler struct {
	users       store.UserStoreIface
	connections *store.ConnectionStore
	skills      *store.SkillStore
	log         *logrus.Logger
}

func registerConnectionRoutes(r chi.Router, deps Deps) {
	h := &connectionsAPIHandler{
		users:       deps.Users,
		connections: deps.Connections,
		skills:      deps.Skills,
		log:         deps.Logger,
	}

	r.Get("/connections", h.List)
	r.Post("/connections", h.Create)
	r.Delete("/connections/{id}", h.Delete)
}

// List returns the caller's connections with resolved peer profiles.
// GET /api/v1/connections
func (h *connectionsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentMember(w, r, h.users, h.log)
	if !ok {
		return
	}

	conns, err := h.connections.ListForUser(r.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).Error("connection list failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := ConnectionListResponse{Success: true, Connections: make([]ConnectionItem, 0, len(conns))}
	for _, c := range conns {
		peer, err := h.users.GetByID(r.Context(), c.PeerID)
		if err != nil {
			// Peer record removed out-of-band; skip the dangling row.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			h.log.WithError(err).Error("peer read failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp.Connections = append(resp.Connections, ConnectionItem{
			ID:        c.ID,
			Peer:      memberFromUser(peer, nil),
			CreatedAt: c.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create connects the caller to another member.
// POST /api/v1/connections
func (h *connectionsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentMember(w, r, h.users, h.log)
	if !ok {
		return
	}

	var req CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MemberID == "" {
		writeError(w, http.StatusBadRequest, "memberId is required")
		return
	}

	conn, err := h.connections.Create(r.Context(), user.ID, req.MemberID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSelfConnection):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "member not found")
		case errors.Is(err, store.ErrDuplicateConnection):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.log.WithError(err).Error("connection create failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	peer, err := h.users.GetByID(r.Context(), conn.PeerID)
	if err != nil {
		h.log.WithError(err).Error("peer read failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, ConnectionResponse{
		Success: true,
		Connection: ConnectionItem{
			ID:        conn.ID,
			Peer:      memberFromUser(peer, nil),
			CreatedAt: conn.CreatedAt,
		},
	})
}

// Delete removes one of the caller's connections.
// DELETE /api/v1/connections/{id}
func (h *connectionsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentMember(w, r, h.users, h.log)
	if !ok {
		return
	}

	err := h.connections.Delete(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "connection not found")
			return
		}
		h.log.WithError(err).Error("connection delete failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
