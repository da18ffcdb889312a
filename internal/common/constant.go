// Package common contains shared constants and helpers used across
// membrocelestial client components.
package common

const (
	// TenantHeaderName carries the trusted tenant (church) id on every
	// protected request.
	TenantHeaderName = "X-Igreja-Id"

	// RequestIDHeaderName correlates a client call with remote logs.
	RequestIDHeaderName = "X-Request-ID"
)
