// Package web provides the cookie-session plumbing that ties a browser to
// its tracker session.
package web

import (
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionName = "wellness-session"

var (
	store     *sessions.CookieStore
	storeOnce sync.Once
)

func cookieStore() *sessions.CookieStore {
	storeOnce.Do(func() {
		key := os.Getenv("SESSION_KEY")
		if key == "" {
			panic("SESSION_KEY environment variable not set")
		}
		store = sessions.NewCookieStore([]byte(key))
		store.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   3600 * 8, // 8 hours
			HttpOnly: true,
			Secure:   os.Getenv("ENV") != "dev" && os.Getenv("ENV") != "test",
			SameSite: http.SameSiteLaxMode,
		}
	})
	return store
}

// GetSession retrieves a session from the request.
func GetSession(r *http.Request) (*sessions.Session, error) {
	return cookieStore().Get(r, sessionName)
}

// SaveSession saves the session.
func SaveSession(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	return cookieStore().Save(r, w, session)
}

// VisitorID returns the stable ID tying this browser to its tracker
// session, minting one on first sight.
func VisitorID(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := GetSession(r)
	if err != nil {
		return "", err
	}

	id, ok := session.Values["sid"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		session.Values["sid"] = id
		if err := SaveSession(r, w, session); err != nil {
			return "", err
		}
	}
	return id, nil
}
