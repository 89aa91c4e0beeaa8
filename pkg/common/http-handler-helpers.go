package common

import (
	"net/http"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

// HandlerFunc receives the session id resolved from the cookie.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, sessionId string) error

// StatusError lets handlers pick the response status of a failure.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func WithStatus(status int, err error) error {
	return &StatusError{Status: status, Err: err}
}

func JsonHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		allowOrigin(w, r)
		sessionId, _ := HandleSessionCookie(w, r)
		if err := fn(w, r, sessionId); err != nil {
			status := http.StatusInternalServerError
			if se, ok := err.(*StatusError); ok {
				status = se.Status
			}
			log.WithField("path", r.URL.Path).Warnf("error handling request: %v", err)
			WriteJson(w, status, map[string]string{"error": err.Error()})
		}
	}
}

func WriteJson(w http.ResponseWriter, status int, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

func allowOrigin(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
