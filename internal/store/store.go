// Package store implements the remote activity-log collection store:
// append-only per-user collections with full-snapshot change
// notifications.
package store

import (
	"context"
	"strings"
)

// Snapshot is one full point-in-time payload for a collection. Exists is
// false when the collection has never been written to, which is a normal
// state (no submissions yet), not an error.
type Snapshot struct {
	Exists  bool
	Entries []SnapshotEntry
}

// SnapshotEntry pairs a store-assigned record key with the raw JSON body
// stored under it. Entries are in the collection's key order, which is the
// insertion order.
type SnapshotEntry struct {
	Key  string
	Body []byte
}

// SnapshotFunc receives snapshot deliveries for one subscription.
type SnapshotFunc func(Snapshot)

// Handle identifies one live subscription.
type Handle interface{}

// Store is the remote collection store. Implementations deliver snapshots
// from their own goroutine, never synchronously from within Subscribe, and
// serialize deliveries per subscription. After Unsubscribe returns, any
// delivery still in flight is the subscriber's to discard; subscribers
// must check the handle is still current before applying one.
type Store interface {
	// Subscribe attaches a listener to path. The first delivery is the
	// collection's current snapshot; each change produces another.
	Subscribe(ctx context.Context, path string, fn SnapshotFunc) (Handle, error)

	// Unsubscribe detaches a listener. Safe to call with a handle that was
	// already unsubscribed.
	Unsubscribe(h Handle)

	// Append adds a new record body to path's collection and returns the
	// key it was stored under. Bodies are marshalled as JSON.
	Append(ctx context.Context, path string, body any) (string, error)
}

// LogPath returns the collection path for a user's activity log. The "."
// in a contact address is a reserved path delimiter downstream, so it is
// substituted before use as a key segment.
func LogPath(contactAddress string) string {
	return "userActivities/" + strings.ReplaceAll(contactAddress, ".", ",")
}
