// Package cli provides the interactive gophauth command-line client.
//
// It wires configuration, the local session database, the API client and
// the auth services into a REPL that walks through the same screens as the
// web client: login, signup, OTP verification and home. Typical flow: show
// "Loading..." while the stored token is verified, land on the screen the
// route guard picks, start a background connectivity watcher and execute
// user commands.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
