package server

import (
	"sync"
	"time"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/view"
)

type sessionView struct {
	view     *view.View
	lastUsed time.Time
}

// sessionViews keeps one view per session and content type. The least recently
// used view is dropped once the limit is reached, its state lives on in the store.
type sessionViews struct {
	mu    sync.Mutex
	limit int
	views map[string]*sessionView
	opts  view.Options
}

func newSessionViews(limit int, opts view.Options) *sessionViews {
	return &sessionViews{
		limit: limit,
		views: make(map[string]*sessionView),
		opts:  opts,
	}
}

func (s *sessionViews) get(sessionId string, def *catalog.Definition) *view.View {
	key := sessionId + ":" + string(def.Schema.Type)
	s.mu.Lock()
	defer s.mu.Unlock()
	if sv, ok := s.views[key]; ok {
		sv.lastUsed = time.Now()
		return sv.view
	}
	if s.limit > 0 && len(s.views) >= s.limit {
		s.evictOldest()
	}
	opts := s.opts
	opts.Session = sessionId
	sv := &sessionView{view: view.New(def, opts), lastUsed: time.Now()}
	s.views[key] = sv
	return sv.view
}

func (s *sessionViews) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, sv := range s.views {
		if oldestKey == "" || sv.lastUsed.Before(oldest) {
			oldestKey = k
			oldest = sv.lastUsed
		}
	}
	delete(s.views, oldestKey)
}

func (s *sessionViews) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}
