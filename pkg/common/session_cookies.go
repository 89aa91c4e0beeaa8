package common

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const SessionCookie = "sid"

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionId string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionId,
		Domain:   strings.TrimPrefix(hostOnly(r.Host), "."),
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		MaxAge:   60 * 60 * 24 * 30,
		Path:     "/",
	})
}

func hostOnly(host string) string {
	if h, _, ok := strings.Cut(host, ":"); ok {
		return h
	}
	return host
}

// HandleSessionCookie returns the caller's session id, issuing a new one when the
// cookie is missing or malformed. The bool reports a new session.
func HandleSessionCookie(w http.ResponseWriter, r *http.Request) (string, bool) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), false
		}
	}
	id := uuid.NewString()
	setSessionCookie(w, r, id)
	return id, true
}
