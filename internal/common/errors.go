// Package common defines shared constants and sentinel errors used across
// client and server layers of machinewatch. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Authentication outcome. The only error the login flow ever reports.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Transport or protocol failure talking to the remote backend.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// Token errors (invalid signature, malformed, wrong algorithm).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Degraded-capability signal for the telemetry channel.
	ErrTelemetryUnavailable = errors.New("telemetry unavailable")
)
