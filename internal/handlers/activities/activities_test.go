package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/wellnesshq/tracker/internal/activity"
	"github.com/wellnesshq/tracker/internal/session"
	"github.com/wellnesshq/tracker/internal/store"
)

// nullStore accepts subscriptions and appends but never delivers.
type nullStore struct{ appends int }

func (s *nullStore) Subscribe(context.Context, string, store.SnapshotFunc) (store.Handle, error) {
	return &struct{}{}, nil
}
func (s *nullStore) Unsubscribe(store.Handle) {}
func (s *nullStore) Append(context.Context, string, any) (string, error) {
	s.appends++
	return "00000001-test", nil
}

// do runs a request through the handler func, carrying session cookies
// across calls.
func do(t *testing.T, fn http.HandlerFunc, method, target, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	fn(w, req)
	if got := w.Result().Cookies(); len(got) > 0 {
		cookies = got
	}
	return w, cookies
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("SESSION_KEY", "test-session-key")
}

func TestUpdateValidation(t *testing.T) {
	setupEnv(t)
	h := NewHandler(session.NewHub(&nullStore{}, nil))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"invalid JSON", `{"activity": `, http.StatusBadRequest},
		{"unknown activity", `{"activity":"Parkour","checked":true,"hours":1}`, http.StatusBadRequest},
		{"hours above max", `{"activity":"Walking","checked":true,"hours":21}`, http.StatusBadRequest},
		{"hours off step", `{"activity":"Walking","checked":true,"hours":1.3}`, http.StatusBadRequest},
		{"valid", `{"activity":"Walking","checked":true,"hours":3}`, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, h.Update, "POST", "/api/activities", tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	setupEnv(t)
	h := NewHandler(session.NewHub(&nullStore{}, nil))

	w, cookies := do(t, h.Update, "POST", "/api/activities",
		`{"activity":"Yoga","checked":true,"hours":1.5}`, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("update status = %d", w.Code)
	}

	w, _ = do(t, h.Draft, "GET", "/api/activities", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("draft status = %d", w.Code)
	}

	var entries []draftEntry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, e := range entries {
		if e.Activity == "Yoga" {
			found = true
			if !e.Checked || e.Hours != 1.5 {
				t.Errorf("draft entry not updated: %+v", e)
			}
		}
	}
	if !found {
		t.Error("Yoga missing from draft")
	}
}

// Requests for the same visitor hit the same draft, so overlapping updates
// must not corrupt it. Run with -race.
func TestUpdateConcurrentRequests(t *testing.T) {
	setupEnv(t)
	h := NewHandler(session.NewHub(&nullStore{}, nil))

	// First request mints the session cookie the rest share.
	w, cookies := do(t, h.Update, "POST", "/api/activities",
		`{"activity":"Walking","checked":true,"hours":3}`, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("update status = %d", w.Code)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				kind := activity.Catalog[(n+j)%len(activity.Catalog)]
				body := fmt.Sprintf(`{"activity":%q,"checked":true,"hours":%g}`, kind, float64(j%40)/2)
				req := httptest.NewRequest("POST", "/api/activities", strings.NewReader(body))
				for _, c := range cookies {
					req.AddCookie(c)
				}
				rec := httptest.NewRecorder()
				h.Update(rec, req)
				if rec.Code != http.StatusNoContent {
					t.Errorf("concurrent update status = %d", rec.Code)
				}
			}
		}(i)
	}
	wg.Wait()

	w, _ = do(t, h.Draft, "GET", "/api/activities", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("draft status = %d", w.Code)
	}
	var entries []draftEntry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(activity.Catalog) {
		t.Errorf("draft has %d entries after concurrent updates, want %d", len(entries), len(activity.Catalog))
	}
}

func TestSubmitRequiresSignIn(t *testing.T) {
	setupEnv(t)
	st := &nullStore{}
	h := NewHandler(session.NewHub(st, nil))

	w, _ := do(t, h.Submit, "POST", "/api/activities/submit", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if st.appends != 0 {
		t.Error("append reached the store without a signed-in identity")
	}
}

func TestLogRequiresSignIn(t *testing.T) {
	setupEnv(t)
	h := NewHandler(session.NewHub(&nullStore{}, nil))

	w, _ := do(t, h.Log, "GET", "/api/activities/log", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
