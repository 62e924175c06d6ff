package activity

// Projected is one display-ready line of a submission: a checked activity
// and the hours logged against it.
type Projected struct {
	Kind  Kind    `json:"activity"`
	Hours float64 `json:"hours"`
}

// Project derives the displayable activity list from a stored submission:
// only checked entries, in catalog order. Hours recorded against unchecked
// activities are ignored. A record with nothing checked projects to an
// empty list.
func Project(rec SubmissionRecord) []Projected {
	out := make([]Projected, 0, len(rec.Activities))
	for _, k := range Catalog {
		e, ok := rec.Activities[k]
		if !ok || !e.Checked {
			continue
		}
		out = append(out, Projected{Kind: k, Hours: e.Hours})
	}
	return out
}
