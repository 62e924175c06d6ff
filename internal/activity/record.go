package activity

import "time"

// SubmissionRecord is one immutable entry in a user's activity log: the
// activities snapshot taken at submit time plus the submission timestamp.
// Records are created once by an append and never updated or deleted.
type SubmissionRecord struct {
	// Key is the store-assigned record key. It is not part of the stored
	// body; the store keeps it as the field name the body lives under.
	Key string `json:"-"`

	Activities  map[Kind]Entry `json:"activities"`
	SubmittedAt time.Time      `json:"submittedAt"`
}
