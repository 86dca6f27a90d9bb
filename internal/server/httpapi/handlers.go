package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/machinewatch/internal/api"
	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/credentials"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"github.com/dmitrijs2005/machinewatch/internal/models"
)

// Authenticator checks a username and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.CredentialRecord, credentials.Source, bool)
}

// TokenCodec issues and verifies session tokens.
type TokenCodec interface {
	Issue(id *models.Identity) (string, error)
	Validate(raw string) (*auth.Claims, error)
}

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	creds  Authenticator
	codec  TokenCodec
	logger logging.Logger
}

func NewAuthHandler(creds Authenticator, codec TokenCodec, logger logging.Logger) *AuthHandler {
	return &AuthHandler{creds: creds, codec: codec, logger: logger.With("module", "auth_api")}
}

// SignIn verifies credentials and returns a fresh token with the user's
// display identity.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, api.MessageResponse{Message: "Invalid request body"})
		return
	}

	rec, source, ok := h.creds.Authenticate(ctx, req.Username, req.Password)
	if !ok {
		signInTotal.WithLabelValues("rejected", credentials.NotFound.String()).Inc()
		h.logger.Info(ctx, "sign-in rejected", "username", req.Username)
		writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "Invalid credentials"})
		return
	}

	id := rec.Identity()
	token, err := h.codec.Issue(id)
	if err != nil {
		signInTotal.WithLabelValues("error", source.String()).Inc()
		h.logger.Error(ctx, "issue token failed", "username", id.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, api.MessageResponse{Message: common.ErrorInternal.Error()})
		return
	}

	signInTotal.WithLabelValues("ok", source.String()).Inc()
	h.logger.Info(ctx, "sign-in succeeded", "username", id.Username, "role", id.Role, "source", source.String())

	writeJSON(w, http.StatusOK, api.SignInResponse{
		AccessToken:      token,
		TokenType:        api.TokenTypeBearer,
		ID:               id.ID,
		Username:         id.Username,
		Name:             id.Name,
		Role:             id.Role,
		AssignedLocation: id.AssignedLocation,
		AssignedOffice:   id.AssignedOffice,
		Authorities:      []models.Role{id.Role},
	})
}

// SignOut always succeeds; tokens are stateless and simply expire.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if raw := bearerToken(r); raw != "" {
		if claims, err := h.codec.Validate(raw); err == nil {
			h.logger.Info(r.Context(), "signed out", "username", claims.Username())
		}
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Signed out"})
}

// Session reports the claims of a valid bearer token.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		sessionChecksTotal.WithLabelValues("missing").Inc()
		writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "Missing token"})
		return
	}

	claims, err := h.codec.Validate(raw)
	if err != nil {
		sessionChecksTotal.WithLabelValues("invalid").Inc()
		h.logger.Debug(r.Context(), "session check rejected", "error", err)
		writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "Invalid or expired token"})
		return
	}

	sessionChecksTotal.WithLabelValues("valid").Inc()
	writeJSON(w, http.StatusOK, api.SessionResponse{
		Username:         claims.Username(),
		Role:             claims.Role,
		Name:             claims.Name,
		AssignedLocation: claims.AssignedLocation,
		AssignedOffice:   claims.AssignedOffice,
		ExpiresAt:        claims.ExpiresAt.Time.UTC(),
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
