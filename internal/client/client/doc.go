// Package client contains the client-side gateway to the church-administration
// backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     registration, login, e-mail confirmation, password reset, members,
//     tithes, summaries and notices.
//  2. A REST implementation (see HTTPClient) that attaches the trusted tenant
//     id header to every protected call, refuses protected calls when no
//     tenant is trusted, and maps transport and HTTP failures onto one error
//     type.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations),
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every failure is a *Error or a *ValidationError. Callers match the kind
// with errors.Is against ErrValidation, ErrUnauthenticated, ErrRejected,
// ErrUnavailable and ErrStale, and use UserMessage for notification text.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context; a context pinned with WithTenant makes the call fail with
// ErrStale once the trusted tenant moves on.
package client
