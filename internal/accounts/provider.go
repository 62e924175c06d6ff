package accounts

import (
	"context"
	"sort"
	"sync"

	"github.com/wellnesshq/tracker/internal/identity"
)

// SessionProvider is the in-process identity.Provider for one visitor
// session. SignIn and SignOut flip the current principal; observers are
// notified in registration order, one delivery at a time. Callbacks run
// under the provider's lock and must not call back into it.
type SessionProvider struct {
	mu        sync.Mutex
	current   *identity.Identity
	nextID    int
	listeners map[int]func(*identity.Identity)
}

// NewSessionProvider returns a signed-out provider.
func NewSessionProvider() *SessionProvider {
	return &SessionProvider{listeners: make(map[int]func(*identity.Identity))}
}

// OnIdentityChange registers fn and immediately delivers the current
// state, then once per change. The returned stop function deregisters it
// and is safe to call more than once.
func (p *SessionProvider) OnIdentityChange(fn func(*identity.Identity)) (stop func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	fn(p.current)
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// SignIn makes next the current principal and notifies observers.
func (p *SessionProvider) SignIn(next *identity.Identity) {
	p.notify(next)
}

// SignOut clears the current principal.
func (p *SessionProvider) SignOut(_ context.Context) error {
	p.notify(nil)
	return nil
}

// Current returns the signed-in identity, or nil.
func (p *SessionProvider) Current() *identity.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *SessionProvider) notify(next *identity.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = next

	ids := make([]int, 0, len(p.listeners))
	for id := range p.listeners {
		ids = append(ids, id)
	}
	// map iteration order is random; keep registration order
	sort.Ints(ids)
	for _, id := range ids {
		p.listeners[id](next)
	}
}
