// Package cli provides the interactive machinewatch console.
//
// It wires configuration, local session storage, the backend client, the
// telemetry channel and the authentication service, then runs a REPL that
// stands in for the dashboard's control actions:
//
//   - login  / logout
//   - status (identity, location, telemetry channel state)
//
// On start the previous session is restored when still valid, and a
// background watcher signs the user out once the token expires. The REPL is
// started via App.Run(ctx), which blocks until the user exits.
package cli
