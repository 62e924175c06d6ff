// Package logsync owns the lifecycle of the one live subscription to the
// current user's submission log and keeps a local read model in step with
// it.
package logsync

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wellnesshq/tracker/internal/activity"
	"github.com/wellnesshq/tracker/internal/identity"
	"github.com/wellnesshq/tracker/internal/store"
)

// liveSub ties snapshot deliveries to the subscription they came from.
// Teardown never races a delivery into the read model: a delivery is
// applied only if its liveSub is still the manager's active one, so a
// stray late snapshot from a closed subscription is discarded.
type liveSub struct {
	handle store.Handle
}

// Manager is a state machine with two states: idle (no identity, no
// subscription) and subscribed to exactly one identity's log. Identity
// transitions drive it; store snapshots flow through it into the read
// model.
type Manager struct {
	store store.Store
	log   logrus.FieldLogger

	mu      sync.Mutex
	current *identity.Identity
	active  *liveSub
	records []activity.SubmissionRecord
}

// NewManager returns an idle manager.
func NewManager(st store.Store, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{store: st, log: log}
}

// OnTransition reacts to an identity transition. It is the watcher's
// TransitionFunc: the prev argument is ignored in favour of the manager's
// own state, so stale captured identities can never drive teardown.
func (m *Manager) OnTransition(_, next *identity.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if identity.Equal(m.current, next) {
		// Re-delivered sign-in for the same account: keep the existing
		// subscription, no close/reopen.
		return
	}

	// Tear down before anything about the next identity becomes visible.
	if m.active != nil {
		m.store.Unsubscribe(m.active.handle)
		m.active = nil
	}
	m.records = nil
	m.current = next

	if next == nil {
		return
	}

	sub := &liveSub{}
	path := store.LogPath(next.ContactAddress)
	handle, err := m.store.Subscribe(context.Background(), path, func(snap store.Snapshot) {
		m.apply(sub, snap)
	})
	if err != nil {
		// Back to idle, so a re-delivered sign-in for the same account is
		// not mistaken for a duplicate and can open the subscription again.
		m.current = nil
		m.log.WithError(err).Errorf("subscribing to %s", path)
		return
	}
	sub.handle = handle
	m.active = sub
}

func (m *Manager) apply(sub *liveSub, snap store.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != sub {
		// Superseded or torn down since this snapshot was dispatched.
		return
	}

	if !snap.Exists {
		m.records = []activity.SubmissionRecord{}
		return
	}

	records := make([]activity.SubmissionRecord, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		var rec activity.SubmissionRecord
		if err := json.Unmarshal(e.Body, &rec); err != nil {
			m.log.WithError(err).Errorf("skipping malformed record %s", e.Key)
			continue
		}
		rec.Key = e.Key
		records = append(records, rec)
	}
	m.records = records
}

// Records returns the read model: the last delivered snapshot's records,
// in store key order, for the currently subscribed identity. Empty when
// idle or when nothing has been submitted yet.
func (m *Manager) Records() []activity.SubmissionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]activity.SubmissionRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Subscribed reports the identity the read model belongs to, if any.
func (m *Manager) Subscribed() (*identity.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}

// Close tears down any live subscription and empties the read model.
func (m *Manager) Close() {
	m.OnTransition(nil, nil)
}
