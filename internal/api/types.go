package api

import "time"

// Every API response carries the envelope invariant: a success flag, plus an
// operation-specific payload on success or an error string on failure.

// SuccessResponse is the minimal success envelope.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// MessageResponse is a success envelope with a human-readable message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- Member types ---

// Member is the JSON representation of a member profile.
type Member struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	IsAdmin     bool      `json:"isAdmin"`
	Skills      []string  `json:"skills,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MemberResponse wraps a single member.
type MemberResponse struct {
	Success bool   `json:"success"`
	Member  Member `json:"member"`
}

// MemberListResponse is the paginated member list.
type MemberListResponse struct {
	Success    bool     `json:"success"`
	Members    []Member `json:"members"`
	NextCursor *string  `json:"nextCursor"`
}

// UpdateProfileRequest is the request body for PUT /api/v1/members/me.
// A nil Skills slice leaves the skill set untouched.
type UpdateProfileRequest struct {
	DisplayName string   `json:"displayName"`
	Bio         string   `json:"bio"`
	Skills      []string `json:"skills"`
}

// --- Connection types ---

// CreateConnectionRequest is the request body for POST /api/v1/connections.
type CreateConnectionRequest struct {
	MemberID string `json:"memberId"`
}

// ConnectionItem is a connection with its resolved peer profile.
type ConnectionItem struct {
	ID        string    `json:"id"`
	Peer      Member    `json:"peer"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConnectionResponse wraps a single connection.
type ConnectionResponse struct {
	Success    bool           `json:"success"`
	Connection ConnectionItem `json:"connection"`
}

// ConnectionListResponse lists the caller's connections.
type ConnectionListResponse struct {
	Success     bool             `json:"success"`
	Connections []ConnectionItem `json:"connections"`
}

// --- Invitation types ---

// CreateInvitationRequest is the request body for POST /api/v1/invitations.
type CreateInvitationRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// InvitationItem is the JSON representation of a pending invitation.
type InvitationItem struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvitationResponse wraps a single invitation.
type InvitationResponse struct {
	Success    bool           `json:"success"`
	Invitation InvitationItem `json:"invitation"`
}

// InvitationListResponse lists pending invitations (admin only).
type InvitationListResponse struct {
	Success     bool             `json:"success"`
	Invitations []InvitationItem `json:"invitations"`
}

// --- Admin types ---

// ChangePasswordRequest is the request body for POST /api/v1/admin/change-password.
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// SetAdminRequest is the request body for POST /api/v1/admin/set-admin.
type SetAdminRequest struct {
	UserID string `json:"userId"`
}
