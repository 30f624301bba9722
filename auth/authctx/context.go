// Package authctx propagates verified session claims through request context.
//
// The claims are stored under a single unexported key and retrieved as the
// concrete *jwt.Claims type, so downstream handlers never touch an untyped
// property bag.
package authctx

import (
	"context"
	"errors"

	"github.com/scribely/scribely/auth/jwt"
)

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

var claimsKey = contextKey{}

// ErrNoClaims is returned when claims are not found in the context.
var ErrNoClaims = errors.New("authctx: no claims in context")

// Set stores verified claims in the context. Called by the auth middleware
// after token verification — this attachment is the guard's only side effect.
func Set(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Get retrieves the verified claims from the context.
func Get(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*jwt.Claims)
	return claims, ok
}

// GetOrError retrieves the verified claims from the context.
// Returns ErrNoClaims if the request never passed the auth middleware.
func GetOrError(ctx context.Context) (*jwt.Claims, error) {
	claims, ok := Get(ctx)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}

// MustGet retrieves the verified claims from the context.
// Panics if claims are missing. Use only behind the auth middleware.
func MustGet(ctx context.Context) *jwt.Claims {
	claims, ok := Get(ctx)
	if !ok {
		panic("authctx: claims not found in context")
	}
	return claims
}
