// Package session wires the per-visitor tracker context: identity
// provider, transition watcher, log subscription manager, draft, and
// submission writer. One Session per browser session, held by the Hub.
package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wellnesshq/tracker/internal/accounts"
	"github.com/wellnesshq/tracker/internal/activity"
	"github.com/wellnesshq/tracker/internal/identity"
	"github.com/wellnesshq/tracker/internal/logsync"
	"github.com/wellnesshq/tracker/internal/store"
	"github.com/wellnesshq/tracker/internal/submission"
)

// Session is one visitor's tracker state. Everything that used to be
// ambient in the page lives here explicitly, so transitions are testable
// without a live provider.
type Session struct {
	Provider *accounts.SessionProvider
	Draft    *activity.Draft
	Manager  *logsync.Manager
	Writer   *submission.Writer

	watcher *identity.Watcher
}

// New builds a session: a fresh signed-out provider, a clean draft, and a
// manager already watching the provider's transitions.
func New(st store.Store, log logrus.FieldLogger) *Session {
	s := &Session{
		Provider: accounts.NewSessionProvider(),
		Draft:    activity.NewDraft(),
		Manager:  logsync.NewManager(st, log),
		Writer:   submission.NewWriter(st),
	}
	s.watcher = identity.Watch(s.Provider, s.Manager.OnTransition)
	return s
}

// Close stops watching and tears down any live subscription.
func (s *Session) Close() {
	s.watcher.Stop()
	s.Manager.Close()
}

// Hub hands out sessions keyed by the visitor's session ID. Sessions hold
// live store subscriptions, so abandoned ones must not pile up: EvictIdle
// closes any session not touched within its deadline.
type Hub struct {
	store store.Store
	log   logrus.FieldLogger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*hubSession
}

type hubSession struct {
	session  *Session
	lastSeen time.Time
}

// NewHub returns an empty hub.
func NewHub(st store.Store, log logrus.FieldLogger) *Hub {
	return &Hub{store: st, log: log, now: time.Now, sessions: make(map[string]*hubSession)}
}

// Get returns the session for id, creating it on first sight, and marks it
// as in use.
func (h *Hub) Get(id string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	hs, ok := h.sessions[id]
	if !ok {
		hs = &hubSession{session: New(h.store, h.log)}
		h.sessions[id] = hs
	}
	hs.lastSeen = h.now()
	return hs.session
}

// Drop closes and forgets a session.
func (h *Hub) Drop(id string) {
	h.mu.Lock()
	hs, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		hs.session.Close()
	}
}

// EvictIdle closes and forgets every session idle for longer than maxIdle,
// returning how many were evicted. Sessions are closed outside the hub
// lock so a slow store teardown cannot stall Get.
func (h *Hub) EvictIdle(maxIdle time.Duration) int {
	cutoff := h.now().Add(-maxIdle)

	h.mu.Lock()
	var idle []*Session
	for id, hs := range h.sessions {
		if hs.lastSeen.Before(cutoff) {
			idle = append(idle, hs.session)
			delete(h.sessions, id)
		}
	}
	h.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}
