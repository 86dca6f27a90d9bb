// Package api holds the JSON shapes and routes of the backend auth API,
// shared by the server handlers and the client.
package api

import (
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/models"
)

const (
	PathSignIn  = "/api/auth/signin"
	PathSignOut = "/api/auth/signout"
	PathSession = "/api/auth/session"
	PathLive    = "/health/live"
	PathMetrics = "/metrics"
)

// TokenTypeBearer is the only token type the API issues.
const TokenTypeBearer = "Bearer"

// SignInRequest is the body of POST /api/auth/signin.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is returned on a successful sign-in.
type SignInResponse struct {
	AccessToken      string        `json:"accessToken"`
	TokenType        string        `json:"tokenType"`
	ID               string        `json:"id"`
	Username         string        `json:"username"`
	Name             string        `json:"name"`
	Role             models.Role   `json:"role"`
	AssignedLocation string        `json:"assignedLocation,omitempty"`
	AssignedOffice   string        `json:"assignedOffice,omitempty"`
	Authorities      []models.Role `json:"authorities"`
}

// Identity extracts the display identity from the response.
func (r *SignInResponse) Identity() *models.Identity {
	return &models.Identity{
		ID:               r.ID,
		Username:         r.Username,
		Role:             r.Role,
		Name:             r.Name,
		AssignedLocation: r.AssignedLocation,
		AssignedOffice:   r.AssignedOffice,
	}
}

// SessionResponse describes a token the server accepted.
type SessionResponse struct {
	Username         string      `json:"username"`
	Role             models.Role `json:"role"`
	Name             string      `json:"name"`
	AssignedLocation string      `json:"assignedLocation,omitempty"`
	AssignedOffice   string      `json:"assignedOffice,omitempty"`
	ExpiresAt        time.Time   `json:"expiresAt"`
}

// MessageResponse carries a human-readable outcome, used for errors and
// sign-out.
type MessageResponse struct {
	Message string `json:"message"`
}
