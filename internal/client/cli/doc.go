// Package cli provides the celestial terminal client.
//
// It wires configuration, the shared session database, the HTTP gateway and
// the services into a cobra command tree. Without a subcommand an
// interactive session starts: each running process behaves like one browser
// tab over the same session, and a background watcher re-reads the session
// so a login or logout done elsewhere is picked up.
//
// One-shot commands:
//   - summary [--year N]: monthly and annual tithe figures
//   - members [--find text]: the member list
//   - version: build stamp
//
// Interactive commands are listed by "help"; see runREPL.
package cli
