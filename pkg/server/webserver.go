// Package server is the JSON presentation adapter: it turns requests into view
// events and snapshots into responses.
package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/persistance"
	"github.com/matst80/slask-catalog/pkg/tracking"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/matst80/slask-catalog/pkg/view"
)

const DefaultSessionLimit = 10000

var (
	noSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_searches_total",
		Help: "The total number of search requests",
	}, []string{"type"})
	noEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_events_total",
		Help: "The total number of view events applied",
	}, []string{"type", "kind"})
)

type WebServer struct {
	Registry *catalog.Registry
	Access   *common.AccessPolicyParser
	views    *sessionViews
}

type Options struct {
	Store        persistance.StateStore
	Tracker      tracking.Tracker
	Access       *common.AccessPolicyParser
	SessionLimit int
}

func NewWebServer(registry *catalog.Registry, opts Options) *WebServer {
	limit := opts.SessionLimit
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	return &WebServer{
		Registry: registry,
		Access:   opts.Access,
		views:    newSessionViews(limit, view.Options{Store: opts.Store, Tracker: opts.Tracker}),
	}
}

// ClientHandler serves the catalog api, mount it under /api/.
func (ws *WebServer) ClientHandler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/types", common.JsonHandler(ws.Types))
	mux.HandleFunc("/{type}/search", common.JsonHandler(ws.Search))
	mux.HandleFunc("/{type}/events", common.JsonHandler(ws.Events))
	return mux
}

type TypeInfo struct {
	Type        types.ContentType `json:"type"`
	Facets      []types.FacetSpec `json:"facets"`
	Sorts       []string          `json:"sorts"`
	DefaultSort string            `json:"defaultSort"`
	PageSize    int               `json:"pageSize"`
}

func (ws *WebServer) Types(w http.ResponseWriter, r *http.Request, sessionId string) error {
	ret := make([]TypeInfo, 0, len(ws.Registry.Types()))
	for _, ct := range ws.Registry.Types() {
		def, err := ws.Registry.Lookup(ct)
		if err != nil {
			return err
		}
		ret = append(ret, TypeInfo{
			Type:        ct,
			Facets:      def.Schema.Facets,
			Sorts:       def.Schema.Sorts,
			DefaultSort: def.Schema.DefaultSort,
			PageSize:    def.Schema.DefaultPageSize,
		})
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	return common.WriteJson(w, http.StatusOK, ret)
}

func (ws *WebServer) sessionView(r *http.Request, sessionId string) (*view.View, error) {
	ct, err := types.ParseContentType(r.PathValue("type"))
	if err != nil {
		return nil, common.WithStatus(http.StatusNotFound, err)
	}
	def, err := ws.Registry.Lookup(ct)
	if err != nil {
		return nil, common.WithStatus(http.StatusNotFound, err)
	}
	v := ws.views.get(sessionId, def)
	v.SetPolicy(ws.Access.FromRequest(r))
	return v, nil
}

// Search loads the view from the request query, the saved session state when
// the query is empty, and runs one cycle.
func (ws *WebServer) Search(w http.ResponseWriter, r *http.Request, sessionId string) error {
	if r.Method != http.MethodGet {
		return common.WithStatus(http.StatusMethodNotAllowed, errors.New("method not allowed"))
	}
	v, err := ws.sessionView(r, sessionId)
	if err != nil {
		return err
	}
	noSearches.WithLabelValues(r.PathValue("type")).Inc()
	v.Load(r.Context(), r.URL.Query())
	snap, err := v.Refresh(r.Context())
	if err != nil {
		return snapshotError(err)
	}
	w.Header().Set("Cache-Control", "private, no-store")
	return common.WriteJson(w, http.StatusOK, snap)
}

var validKinds = map[view.EventKind]bool{
	view.FilterChanged: true,
	view.SearchChanged: true,
	view.SortChanged:   true,
	view.PageChanged:   true,
	view.Cleared:       true,
}

// Events applies one change to the session's current view.
func (ws *WebServer) Events(w http.ResponseWriter, r *http.Request, sessionId string) error {
	if r.Method != http.MethodPost {
		return common.WithStatus(http.StatusMethodNotAllowed, errors.New("method not allowed"))
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		return common.WithStatus(http.StatusBadRequest, err)
	}
	var ev view.Event
	if err := sonic.Unmarshal(body, &ev); err != nil {
		return common.WithStatus(http.StatusBadRequest, err)
	}
	if !validKinds[ev.Kind] {
		return common.WithStatus(http.StatusBadRequest, errors.New("unknown event kind"))
	}
	v, err := ws.sessionView(r, sessionId)
	if err != nil {
		return err
	}
	if v.Current() == nil {
		v.Load(r.Context(), r.URL.Query())
	}
	noEvents.WithLabelValues(r.PathValue("type"), string(ev.Kind)).Inc()
	snap, err := v.Apply(r.Context(), ev)
	if err != nil {
		return snapshotError(err)
	}
	return common.WriteJson(w, http.StatusOK, snap)
}

func snapshotError(err error) error {
	if errors.Is(err, types.ErrStale) {
		return common.WithStatus(http.StatusConflict, err)
	}
	return err
}
