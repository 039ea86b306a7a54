package auth

import (
	"context"

	"github.com/goliatone/go-gateways/core"
)

// Provider is the credential contract consumed by the request pipeline.
type Provider interface {
	// Headers returns the authorization headers for one outbound request,
	// refreshing credentials first when they are stale.
	Headers(ctx context.Context) (map[string]string, error)

	// NeedsRefresh reports whether credentials are within the refresh lead
	// window of their expiry. Credentials without an expiry never need a
	// proactive refresh.
	NeedsRefresh() bool

	// Refresh rotates credentials when stale. It is a no-op for static
	// credentials and for fresh tokens.
	Refresh(ctx context.Context) error
}

var (
	_ Provider          = (*APIKeyCredentials)(nil)
	_ Provider          = (*TokenCredentials)(nil)
	_ core.HeaderSource = (*APIKeyCredentials)(nil)
	_ core.HeaderSource = (*TokenCredentials)(nil)
)
