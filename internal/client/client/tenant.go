package client

import (
	"context"
	"strings"
)

// TenantSource yields the tenant id currently trusted for protected calls.
// session.Store implements it.
type TenantSource interface {
	TrustedTenantID() (string, bool)
}

type tenantKey struct{}

// WithTenant pins ctx to tenant id. A call made with a pinned context fails
// with ErrStale if the trusted tenant differs when the request is sent or
// when its response arrives.
func WithTenant(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantKey{}, id)
}

// TenantFromContext returns the id pinned with WithTenant.
func TenantFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tenantKey{}).(string)
	return id, ok
}

var publicRoutes = map[string]struct{}{
	"/cadastrar":       {},
	"/login":           {},
	"/confirmar":       {},
	"/solicitar-reset": {},
	"/redefinir-senha": {},
}

// IsPublicRoute reports whether path may be called without a trusted tenant.
// Anything not listed is protected.
func IsPublicRoute(path string) bool {
	path, _, _ = strings.Cut(path, "?")
	_, ok := publicRoutes[strings.TrimSuffix(path, "/")]
	return ok
}
