// Package profile implements the signup, sign-in and sign-out handlers.
package profile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wellnesshq/tracker/internal/accounts"
	"github.com/wellnesshq/tracker/internal/session"
	"github.com/wellnesshq/tracker/internal/web"
)

// Handler serves the account endpoints.
type Handler struct {
	registry *accounts.Registry
	hub      *session.Hub
}

// NewHandler returns a Handler backed by the registry and session hub.
func NewHandler(registry *accounts.Registry, hub *session.Hub) *Handler {
	return &Handler{registry: registry, hub: hub}
}

type credentials struct {
	ContactAddress string `json:"contactAddress"`
	DisplayName    string `json:"displayName"`
	Password       string `json:"password"`
}

// Signup registers a new account. It does not sign the user in; the page
// redirects to the sign-in form afterwards.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.registry.Register(r.Context(), creds.ContactAddress, creds.DisplayName, creds.Password)
	if errors.Is(err, accounts.ErrAccountExists) {
		writeError(w, http.StatusConflict, "account already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(id); err != nil {
		slog.Error("encoding signup response", "error", err)
	}
}

// SignIn authenticates and flips the visitor session's identity, which
// starts the activity-log subscription for the account.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.registry.Authenticate(r.Context(), creds.ContactAddress, creds.Password)
	if errors.Is(err, accounts.ErrBadCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid contact address or password")
		return
	}
	if err != nil {
		slog.Error("authenticating", "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	sid, err := web.VisitorID(w, r)
	if err != nil {
		slog.Error("establishing session", "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	h.hub.Get(sid).Provider.SignIn(id)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(id); err != nil {
		slog.Error("encoding sign-in response", "error", err)
	}
}

// SignOut clears the visitor session's identity, tearing down its log
// subscription.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	sid, err := web.VisitorID(w, r)
	if err != nil {
		slog.Error("establishing session", "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	if err := h.hub.Get(sid).Provider.SignOut(r.Context()); err != nil {
		slog.Error("signing out", "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Profile returns the signed-in identity.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	sid, err := web.VisitorID(w, r)
	if err != nil {
		slog.Error("establishing session", "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	id := h.hub.Get(sid).Provider.Current()
	if id == nil {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(id); err != nil {
		slog.Error("encoding profile response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:gosec // We don't care if this fails
}
