// Package cli provides the interactive RoadWatch terminal client.
//
// It wires configuration, the local token store, the authenticated request
// client, the session manager and the dashboard navigator behind a REPL.
// Typical flow: reconcile the stored session with the server, start a
// background connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout
//   - Reset, change password; delete account
//   - Navigate to guarded dashboard surfaces (open, surfaces)
//   - Request and session counters (stats)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
