package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/capscollective/portal/internal/auth"
	"github.com/capscollective/portal/internal/store"
)

// membersAPIHandler provides REST handlers for member profile endpoints.
type membersAPIHandler struct {
	users  store.UserStoreIface
	skills *store.SkillStore
	log    *logrus.Logger
}

func registerMemberRoutes(r chi.Router, deps Deps) {
	h := &membersAPIHandler{users: deps.Users, skills: deps.Skills, log: deps.Logger}

	r.Get("/members", h.List)
	r.Get("/members/me", h.Me)
	r.Put("/members/me", h.UpdateMe)
	r.Get("/members/{id}", h.Get)
}

// currentMember resolves the verified identity to a member record.
// Writes the appropriate error response and returns ok=false on failure.
func currentMember(w http.ResponseWriter, r *http.Request, users store.UserStoreIface, log *logrus.Logger) (*store.User, bool) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	user, err := users.GetBySubject(r.Context(), identity.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "member profile not found")
			return nil, false
		}
		log.WithError(err).Error("member lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return user, true
}

func memberFromUser(u *store.User, skills []*store.Skill) Member {
	m := Member{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
	for _, sk := range skills {
		m.Skills = append(m.Skills, sk.Name)
	}
	return m
}

// Me returns the authenticated caller's profile.
// GET /api/v1/members/me
func (h *membersAPIHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentMember(w, r, h.users, h.log)
	if !ok {
		return
	}

	skills, err := h.skills.ListForUser(r.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).Error("skill list failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, MemberResponse{Success: true, Member: memberFromUser(user, skills)})
}

// UpdateMe updates the caller's display name, bio, and skills.
// PUT /api/v1/members/me
func (h *membersAPIHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentMember(w, r, h.users, h.log)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		writeError(w, http.StatusBadRequest, "displayName is required")
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, displayName, req.Bio)
	if err != nil {
		h.log.WithError(err).Error("profile update failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if req.Skills != nil {
		if err := h.skills.SetForUser(r.Context(), user.ID, req.Skills); err != nil {
			h.log.WithError(err).Error("skill update failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	skills, err := h.skills.ListForUser(r.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).Error("skill list failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, MemberResponse{Success: true, Member: memberFromUser(updated, skills)})
}

// List returns members with cursor pagination.
// GET /api/v1/members?cursor=...&limit=...
func (h *membersAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor, limit := parsePagination(r)

	users, err := h.users.List(r.Context(), decodeCursor(cursor), limit)
	if err != nil {
		h.log.WithError(err).Error("member list failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := MemberListResponse{Success: true, Members: make([]Member, 0, len(users))}
	for _, u := range users {
		resp.Members = append(resp.Members, memberFromUser(u, nil))
	}
	if len(users) == limit {
		next := encodeCursor(users[len(users)-1].ID)
		resp.NextCursor = &next
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single member's profile with skills.
// GET /api/v1/members/{id}
func (h *membersAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		h.log.WithError(err).Error("member read failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	skills, err := h.skills.ListForUser(r.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).Error("skill list failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, MemberResponse{Success: true, Member: memberFromUser(user, skills)})
}
