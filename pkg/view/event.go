package view

import (
	"github.com/matst80/slask-catalog/pkg/types"
)

type EventKind string

const (
	FilterChanged EventKind = "filter"
	SearchChanged EventKind = "search"
	SortChanged   EventKind = "sort"
	PageChanged   EventKind = "page"
	Cleared       EventKind = "clear"
)

// Event is what the presentation layer emits when the user changes the view.
type Event struct {
	Kind     EventKind         `json:"kind"`
	Facet    string            `json:"facet,omitempty"`
	Values   []string          `json:"values,omitempty"`
	Range    *types.RangeValue `json:"range,omitempty"`
	Query    string            `json:"query,omitempty"`
	Sort     string            `json:"sort,omitempty"`
	Page     int               `json:"page,omitempty"`
	PageSize int               `json:"pageSize,omitempty"`
}

// apply returns the next desired state. Every change except paging starts over
// on the first page.
func (e Event) apply(state types.ViewState) types.ViewState {
	next := types.ViewState{Selection: state.Selection.Clone(), Page: state.Page}
	switch e.Kind {
	case FilterChanged:
		if e.Range != nil {
			next.Selection = next.Selection.WithRange(e.Facet, *e.Range)
		} else {
			next.Selection = next.Selection.With(e.Facet, e.Values...)
		}
	case SearchChanged:
		next.Selection.Query = e.Query
	case SortChanged:
		next.Selection.Sort = e.Sort
	case PageChanged:
		if e.Page > 0 {
			next.Page.Page = e.Page
		}
		if e.PageSize > 0 {
			next.Page.PageSize = e.PageSize
		}
		return next
	case Cleared:
		cleared := types.NewFilterSelection()
		cleared.Sort = next.Selection.Sort
		next.Selection = cleared
	}
	next.Page.Page = 1
	return next
}
