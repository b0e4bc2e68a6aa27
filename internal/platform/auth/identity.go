package auth

import (
	"context"
	"strings"
)

// PlanPlus is the paid membership tier that waives shipping fees at checkout.
const PlanPlus = "plus"

// Identity captures the authenticated shopper extracted from a Firebase ID token.
type Identity struct {
	UID   string
	Email string
	Plans []string
}

// HasPlan reports whether the identity carries the given subscription plan (case-insensitive).
func (i *Identity) HasPlan(plan string) bool {
	if i == nil {
		return false
	}
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan == "" {
		return false
	}
	for _, p := range i.Plans {
		if strings.EqualFold(p, plan) {
			return true
		}
	}
	return false
}

type contextKey string

const identityContextKey contextKey = "github.com/swapnil12348/gocart/internal/platform/auth/identity"

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
