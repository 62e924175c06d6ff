// Package submission appends immutable activity submissions to the
// current user's log.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wellnesshq/tracker/internal/activity"
	"github.com/wellnesshq/tracker/internal/identity"
	"github.com/wellnesshq/tracker/internal/store"
)

// ErrNotAuthenticated is returned when a submission is attempted with no
// signed-in identity. Checked before any store call.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrInvalidDraft is returned for drafts that don't cover the full
// activity catalog.
var ErrInvalidDraft = errors.New("invalid draft")

// body is the stored record shape: the activities snapshot plus the
// submission timestamp.
type body struct {
	Activities  map[activity.Kind]activity.Entry `json:"activities"`
	SubmittedAt time.Time                        `json:"submittedAt"`
}

// Writer validates drafts and appends them as new records. It never
// touches the read model; the subscription manager picks the append up
// through the store's change notification on its own schedule.
type Writer struct {
	store store.Store
	now   func() time.Time
}

// NewWriter returns a Writer backed by the given store.
func NewWriter(st store.Store) *Writer {
	return &Writer{store: st, now: time.Now}
}

// Submit appends a snapshot of the draft to id's log and returns the
// store-assigned record key. The snapshot is an independent copy: edits to
// the draft after Submit returns don't alter the stored record. Store
// failures are reported to the caller and not retried.
func (w *Writer) Submit(ctx context.Context, id *identity.Identity, draft *activity.Draft) (string, error) {
	if id == nil {
		return "", ErrNotAuthenticated
	}
	if draft == nil {
		return "", fmt.Errorf("%w: no draft", ErrInvalidDraft)
	}

	snap := draft.Snapshot()
	if len(snap) != len(activity.Catalog) {
		return "", fmt.Errorf("%w: %d of %d catalog entries", ErrInvalidDraft, len(snap), len(activity.Catalog))
	}

	key, err := w.store.Append(ctx, store.LogPath(id.ContactAddress), body{
		Activities:  snap,
		SubmittedAt: w.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("appending submission: %w", err)
	}
	return key, nil
}
