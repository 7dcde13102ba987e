// Package cli is the interactive gophauth command-line client.
//
// It prompts for credentials, logs in over gRPC, and keeps a small REPL
// open for session commands. A background watcher probes the server's
// health endpoint and reports when the client goes online or offline.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
