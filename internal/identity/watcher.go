package identity

import "sync"

// TransitionFunc receives each identity transition: signed-out to
// signed-in, signed-in to signed-out, or a switch between accounts. Either
// side may be nil.
type TransitionFunc func(prev, next *Identity)

// Watcher normalizes a Provider's change stream into transitions. Each
// delivery completes before the next is dispatched, and nothing is
// delivered after Stop returns.
type Watcher struct {
	mu      sync.Mutex
	prev    *Identity
	stopped bool
	stop    func()
}

// Watch registers exactly one callback with the provider. The provider's
// immediate initial notification becomes the first transition, so fn
// always sees the current state up front, even when signed out.
func Watch(p Provider, fn TransitionFunc) *Watcher {
	w := &Watcher{}
	w.stop = p.OnIdentityChange(func(next *Identity) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.stopped {
			return
		}
		prev := w.prev
		w.prev = next
		fn(prev, next)
	})
	return w
}

// Stop deregisters from the provider. Idempotent; after it returns no
// further transitions are delivered. The provider callback is deregistered
// outside the watcher lock so a concurrent in-flight delivery can finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	stop := w.stop
	w.mu.Unlock()

	if stop != nil {
		stop()
	}
}
