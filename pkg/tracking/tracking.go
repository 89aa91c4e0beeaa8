// Package tracking records applied search snapshots for analytics.
package tracking

import (
	"time"

	"github.com/matst80/slask-catalog/pkg/types"
)

type SearchEvent struct {
	Session  string                      `json:"session"`
	Type     types.ContentType           `json:"type"`
	Query    string                      `json:"query,omitempty"`
	Sort     string                      `json:"sort,omitempty"`
	Values   map[string][]string         `json:"values,omitempty"`
	Ranges   map[string]types.RangeValue `json:"ranges,omitempty"`
	Page     int                         `json:"page"`
	Hits     int                         `json:"hits"`
	Stage    string                      `json:"stage"`
	Fallback bool                        `json:"fallback,omitempty"`
	Time     time.Time                   `json:"time"`
}

type Tracker interface {
	TrackSearch(event SearchEvent)
}

// NoopTracker is used when no broker is configured.
type NoopTracker struct{}

func (NoopTracker) TrackSearch(SearchEvent) {}
