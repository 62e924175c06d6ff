// Package identity models the authenticated principal and wraps the
// identity provider's change notifications into an ordered transition
// stream.
package identity

import "context"

// Identity is an authenticated principal. Key is stable and derived from
// the account's contact address; at most one Identity is current at any
// time.
type Identity struct {
	Key            string `json:"key"`
	DisplayName    string `json:"displayName"`
	ContactAddress string `json:"contactAddress"`
}

// Equal reports whether a and b name the same principal. Either side may
// be nil (signed out).
func Equal(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key == b.Key
}

// Provider is the external identity source. Implementations must invoke a
// registered callback once immediately with the current state, then once
// per change, with deliveries serialized and in order.
type Provider interface {
	// OnIdentityChange registers a callback and returns a function that
	// deregisters it. The callback receives nil when signed out.
	OnIdentityChange(fn func(*Identity)) (stop func())

	// SignOut clears the current principal.
	SignOut(ctx context.Context) error
}
