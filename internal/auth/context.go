// Package auth resolves and carries the identity of the caller.
package auth

import (
	"context"
)

// Identity is the resolved caller, injected into the request context by the
// identity middleware.
type Identity struct {
	UserID string
	Email  string
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity adds the resolved identity to the context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext retrieves the identity from the context.
// Returns nil if not present.
func FromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// MustFromContext retrieves the identity from the context.
// Panics if not present (use only behind the identity middleware).
func MustFromContext(ctx context.Context) *Identity {
	id := FromContext(ctx)
	if id == nil {
		panic("identity not found - ensure identity middleware is applied")
	}
	return id
}

// UserIDFromContext returns the caller's user ID, or "" when unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	id := FromContext(ctx)
	if id == nil {
		return ""
	}
	return id.UserID
}
