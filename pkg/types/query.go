package types

import "slices"

type Operator string

const (
	OpEq       Operator = "eq"
	OpIn       Operator = "in"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpILike    Operator = "ilike"
	OpOverlaps Operator = "ov"
	OpOr       Operator = "or"
)

// Predicate is one clause of a backend query. Or groups keep their alternatives in Any.
type Predicate struct {
	Facet  string      `json:"facet,omitempty"`
	Field  string      `json:"field,omitempty"`
	Op     Operator    `json:"op"`
	Value  string      `json:"value,omitempty"`
	Values []string    `json:"values,omitempty"`
	Any    []Predicate `json:"any,omitempty"`
}

// Fields lists every field the predicate touches, including or group members.
func (p Predicate) Fields() []string {
	if p.Op != OpOr {
		return []string{p.Field}
	}
	ret := make([]string, 0, len(p.Any))
	for _, a := range p.Any {
		ret = append(ret, a.Fields()...)
	}
	return ret
}

type SortSpec struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

type Window struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// QueryDescription is the compiled, source independent form of a selection.
type QueryDescription struct {
	Type        ContentType `json:"type"`
	Predicates  []Predicate `json:"predicates,omitempty"`
	Sort        []SortSpec  `json:"sort,omitempty"`
	Window      Window      `json:"window"`
	ClientPaged bool        `json:"clientPaged,omitempty"`
	Deferred    []string    `json:"deferred,omitempty"`
	DeferSearch bool        `json:"deferSearch,omitempty"`
	Search      string      `json:"search,omitempty"`
}

func (q *QueryDescription) IsDeferred(facetId string) bool {
	return slices.Contains(q.Deferred, facetId)
}

// FacetIds returns every facet that contributed a predicate or was deferred.
func (q *QueryDescription) FacetIds() []string {
	ret := slices.Clone(q.Deferred)
	for _, p := range q.Predicates {
		if p.Facet != "" && !slices.Contains(ret, p.Facet) {
			ret = append(ret, p.Facet)
		}
	}
	return ret
}
