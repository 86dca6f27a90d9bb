// Package client contains client-side building blocks for machinewatch.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) to talk to the
//     auth backend: Login, Logout and VerifySession.
//  2. An HTTP implementation (see HTTPClient) that speaks the JSON API,
//     attaches bearer tokens and maps transport failures and HTTP status
//     codes to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable (which also matches common.ErrBackendUnavailable)
// and ErrUnauthorized.
//
// Implementations are safe for concurrent use. All operations accept
// context.Context and honor cancellation and timeouts.
package client
