package types

import "context"

// Row is one raw record as returned by a remote source, before normalization.
type Row map[string]any

type SourceRequest struct {
	Table      string
	Predicates []Predicate
	Sort       []SortSpec
	Window     Window
	Count      bool
}

type SourceResponse struct {
	Rows []Row
	// Total is the number of matching rows, or -1 when the source did not report it.
	Total int
}

// Source is a remote query execution interface for one data store.
type Source interface {
	Query(ctx context.Context, req SourceRequest) (*SourceResponse, error)
}

// FallbackProvider returns the built in dataset used when every live source fails.
type FallbackProvider interface {
	Fallback(ct ContentType) []CatalogItem
}

// AccessPolicy is the caller's visibility scope, used by sources keyed by visibility.
type AccessPolicy struct {
	Subject     string   `json:"sub,omitempty"`
	Departments []string `json:"departments,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// Visibility lists the visibility tags the caller may read.
func (p AccessPolicy) Visibility() []string {
	ret := []string{"public"}
	if p.Subject != "" {
		ret = append(ret, "internal")
	}
	return append(ret, p.Departments...)
}
