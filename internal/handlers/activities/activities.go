// Package activities implements the draft-editing, submission and log
// handlers.
package activities

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/wellnesshq/tracker/internal/activity"
	"github.com/wellnesshq/tracker/internal/session"
	"github.com/wellnesshq/tracker/internal/submission"
	"github.com/wellnesshq/tracker/internal/web"
)

// Handler serves the activity endpoints for the visitor's session.
type Handler struct {
	hub *session.Hub
}

// NewHandler returns a Handler backed by the session hub.
func NewHandler(hub *session.Hub) *Handler {
	return &Handler{hub: hub}
}

type draftEntry struct {
	Activity activity.Kind `json:"activity"`
	Checked  bool          `json:"checked"`
	Hours    float64       `json:"hours"`
}

// Draft returns the session's current draft in catalog order.
func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	out := make([]draftEntry, 0, len(activity.Catalog))
	for _, k := range activity.Catalog {
		e := s.Draft.Entry(k)
		out = append(out, draftEntry{Activity: k, Checked: e.Checked, Hours: e.Hours})
	}
	writeJSON(w, out)
}

// Update applies one draft edit. Hours are validated here, at the point of
// entry: a rejected edit leaves the draft untouched.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var in draftEntry
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, ok := activity.ParseKind(string(in.Activity))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown activity")
		return
	}
	if err := activity.ValidateHours(in.Hours); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Draft.SetChecked(kind, in.Checked)
	s.Draft.SetHours(kind, in.Hours)
	w.WriteHeader(http.StatusNoContent)
}

// Submit appends the current draft to the signed-in user's log. The draft
// is kept as-is afterwards; the new record shows up in the log via the
// subscription round trip.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	key, err := s.Writer.Submit(r.Context(), s.Provider.Current(), s.Draft)
	switch {
	case errors.Is(err, submission.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "please sign in to submit data")
		return
	case errors.Is(err, submission.ErrInvalidDraft):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("submitting activities", "error", err)
		writeError(w, http.StatusInternalServerError, "error submitting data, please try again")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"key": key}); err != nil {
		slog.Error("encoding submit response", "error", err)
	}
}

type logEntry struct {
	ID          string               `json:"id"`
	SubmittedAt time.Time            `json:"submittedAt"`
	Activities  []activity.Projected `json:"activities"`
}

// Log returns the synchronized submission history for the signed-in user,
// projected to checked activities.
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if _, subscribed := s.Manager.Subscribed(); !subscribed {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	records := s.Manager.Records()
	out := make([]logEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, logEntry{
			ID:          rec.Key,
			SubmittedAt: rec.SubmittedAt,
			Activities:  activity.Project(rec),
		})
	}
	writeJSON(w, out)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sid, err := web.VisitorID(w, r)
	if err != nil {
		slog.Error("establishing session", "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return nil, false
	}
	return h.hub.Get(sid), true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:gosec // We don't care if this fails
}
