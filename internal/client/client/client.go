package client

import (
	"context"

	"github.com/dmitrijs2005/machinewatch/internal/api"
)

// Client is the transport-agnostic contract to the remote auth backend.
type Client interface {
	Close() error
	Login(ctx context.Context, username, password string) (*api.SignInResponse, error)
	Logout(ctx context.Context, token string) error
	VerifySession(ctx context.Context, token string) (*api.SessionResponse, error)
}
