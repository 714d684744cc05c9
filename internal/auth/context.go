package auth

import (
	"context"
	"errors"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const identityKey contextKey = "identity"

// ErrIdentityNotFound is returned when no identity exists in the request context.
var ErrIdentityNotFound = errors.New("identity not found in context")

// WithIdentity returns a new context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx extracts the identity set by RequireAuth.
func IdentityFromCtx(ctx context.Context) (models.Identity, error) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	if !ok || id.ID.IsZero() {
		return models.Identity{}, ErrIdentityNotFound
	}
	return id, nil
}
