package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/software-access-portal/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func newUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// SignUpRequest defines the account registration payload.
type SignUpRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// SignUpResponse is returned after a successful registration.
type SignUpResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"`
	User      UserSummary `json:"user"`
}

// PermissionView is the API representation of a granted access level.
type PermissionView struct {
	SoftwareID string    `json:"software_id"`
	AccessType string    `json:"access_type"`
	GrantedBy  string    `json:"granted_by"`
	GrantedAt  time.Time `json:"granted_at"`
}

func newPermissionViews(permissions []domain.UserPermission) []PermissionView {
	views := make([]PermissionView, 0, len(permissions))
	for _, p := range permissions {
		views = append(views, PermissionView{
			SoftwareID: p.SoftwareID,
			AccessType: string(p.AccessType),
			GrantedBy:  p.GrantedBy,
			GrantedAt:  p.GrantedAt,
		})
	}
	return views
}

// ProfileResponse wraps the authenticated user's account details along
// with the access levels granted to them.
type ProfileResponse struct {
	User        UserSummary      `json:"user"`
	Permissions []PermissionView `json:"permissions"`
}

// SoftwareView is the API representation of a catalog entry.
type SoftwareView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	AccessLevels []string  `json:"access_levels"`
	CreatedAt    time.Time `json:"created_at"`
}

func newSoftwareView(software domain.Software) SoftwareView {
	levels := make([]string, 0, len(software.AccessLevels))
	for _, level := range software.AccessLevels {
		levels = append(levels, string(level))
	}

	return SoftwareView{
		ID:           software.ID,
		Name:         software.Name,
		Description:  software.Description,
		AccessLevels: levels,
		CreatedAt:    software.CreatedAt,
	}
}

// CreateSoftwareRequest defines the payload for adding a catalog entry.
type CreateSoftwareRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	AccessLevels []string `json:"access_levels" binding:"required"`
}

// UpdateSoftwareRequest carries a partial catalog update; omitted fields are
// left unchanged.
type UpdateSoftwareRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	AccessLevels []string `json:"access_levels"`
}

// SoftwareResponse wraps a single catalog entry.
type SoftwareResponse struct {
	Software SoftwareView `json:"software"`
}

// SoftwareListResponse wraps the full catalog listing.
type SoftwareListResponse struct {
	Software []SoftwareView `json:"software"`
}

// SoftwareMutationResponse is returned by catalog create and update.
type SoftwareMutationResponse struct {
	Message  string       `json:"message"`
	Software SoftwareView `json:"software"`
}

// SoftwareDeleteResponse reports a completed cascade deletion.
type SoftwareDeleteResponse struct {
	Message         string `json:"message"`
	RemovedRequests int    `json:"removed_requests"`
}

// DependencyConflictResponse is returned when a catalog entry cannot be
// deleted because granted permissions still reference it.
type DependencyConflictResponse struct {
	Error           string `json:"error"`
	AccessRequests  int    `json:"access_requests"`
	UserPermissions int    `json:"user_permissions"`
	TraceID         string `json:"trace_id,omitempty"`
}

// RequestView is the API representation of an access request.
type RequestView struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Username     string     `json:"username,omitempty"`
	SoftwareID   string     `json:"software_id"`
	SoftwareName string     `json:"software_name,omitempty"`
	AccessType   string     `json:"access_type"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	ProcessedBy  *string    `json:"processed_by,omitempty"`
	Comments     *string    `json:"comments,omitempty"`
}

func newRequestView(request domain.AccessRequest) RequestView {
	return RequestView{
		ID:           request.ID,
		UserID:       request.UserID,
		Username:     request.Username,
		SoftwareID:   request.SoftwareID,
		SoftwareName: request.SoftwareName,
		AccessType:   string(request.AccessType),
		Reason:       request.Reason,
		Status:       string(request.Status),
		CreatedAt:    request.CreatedAt,
		UpdatedAt:    request.UpdatedAt,
		ProcessedBy:  request.ProcessedBy,
		Comments:     request.Comments,
	}
}

func newRequestViews(requests []domain.AccessRequest) []RequestView {
	views := make([]RequestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, newRequestView(request))
	}
	return views
}

// CreateAccessRequestRequest defines the payload for submitting an access
// request.
type CreateAccessRequestRequest struct {
	SoftwareID string `json:"software_id" binding:"required"`
	AccessType string `json:"access_type" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// DecideAccessRequestRequest defines the payload for resolving a pending
// request.
type DecideAccessRequestRequest struct {
	Status   string  `json:"status" binding:"required"`
	Comments *string `json:"comments"`
}

// RequestResponse wraps a single access request.
type RequestResponse struct {
	Request RequestView `json:"request"`
}

// RequestListResponse wraps an access request listing.
type RequestListResponse struct {
	Requests []RequestView `json:"requests"`
}

// RequestMutationResponse is returned by request create and decide.
type RequestMutationResponse struct {
	Message string      `json:"message"`
	Request RequestView `json:"request"`
}
