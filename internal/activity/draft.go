package activity

import "sync"

// Draft holds the in-progress checked/hours selections for the current
// session. A draft always carries exactly one entry per catalog kind; it is
// edited in place and only reset by starting a new session, never by
// submitting. Safe for concurrent use: one draft is shared by every
// request in a visitor's session.
type Draft struct {
	mu      sync.Mutex
	entries map[Kind]Entry
}

// NewDraft returns a clean draft: every catalog kind present, unchecked,
// zero hours.
func NewDraft() *Draft {
	entries := make(map[Kind]Entry, len(Catalog))
	for _, k := range Catalog {
		entries[k] = Entry{}
	}
	return &Draft{entries: entries}
}

// SetChecked updates one entry's checked flag. Hours are untouched, so an
// unchecked activity keeps whatever hours were set; downstream aggregation
// ignores them. Unknown kinds are a no-op.
func (d *Draft) SetChecked(kind Kind, checked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[kind]
	if !ok {
		return
	}
	e.Checked = checked
	d.entries[kind] = e
}

// SetHours updates one entry's hours. Range and step limits are enforced by
// the caller (see ValidateHours); unknown kinds are a no-op.
func (d *Draft) SetHours(kind Kind, hours float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[kind]
	if !ok {
		return
	}
	e.Hours = hours
	d.entries[kind] = e
}

// Entry returns the current state of one activity.
func (d *Draft) Entry(kind Kind) Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entries[kind]
}

// Snapshot returns an independent copy of the draft's entries. Mutating the
// draft afterwards does not alter the snapshot, which is what makes stored
// submissions immune to later edits.
func (d *Draft) Snapshot() map[Kind]Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := make(map[Kind]Entry, len(d.entries))
	for k, e := range d.entries {
		snap[k] = e
	}
	return snap
}
