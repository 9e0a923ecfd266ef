package auth

import (
	"context"
)

var claimCtxKey = &contextKey{"auth_claim"}

type contextKey struct {
	name string
}

// WithClaimContext stores the session claim in ctx. ProtectedRoute does
// this for the request user context so handlers further down can reach
// the claim without fiber.
func WithClaimContext(ctx context.Context, claim *AuthorizationClaim) context.Context {
	return context.WithValue(ctx, claimCtxKey, claim)
}

// ClaimFromContext returns the session claim stored by WithClaimContext.
func ClaimFromContext(ctx context.Context) (*AuthorizationClaim, bool) {
	if ctx == nil {
		return nil, false
	}
	claim, ok := ctx.Value(claimCtxKey).(*AuthorizationClaim)
	return claim, ok && claim != nil
}
