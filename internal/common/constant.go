// Package common contains shared constants and sentinel errors used across
// machinewatch components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on outbound telemetry calls.
const AccessTokenHeaderName = "access_token"

// BearerPrefix prefixes the token in the HTTP Authorization header.
const BearerPrefix = "Bearer "

// TelemetryServiceName is the health-check service name the telemetry
// gateway reports as SERVING.
const TelemetryServiceName = "machinewatch.telemetry"

// ClientIDHeaderName is the gRPC metadata key identifying a telemetry client
// instance in gateway logs.
const ClientIDHeaderName = "client_id"
