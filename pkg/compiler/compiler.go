// Package compiler turns a filter selection into a source independent query description.
package compiler

import (
	"slices"
	"strings"

	"github.com/matst80/slask-catalog/pkg/types"
)

const DefaultClientWindow = 500

type Compiler interface {
	Compile(sel types.FilterSelection, page types.PageState) types.QueryDescription
}

// Column maps a facet onto a backend column. Op decides how multi values are sent:
// OpIn for scalar columns, OpOverlaps for array columns, OpILike for substring facets.
type Column struct {
	Name string
	Op   types.Operator
}

// TableCompiler is a table driven compiler, one instance per content type.
// Facets missing from Columns cannot be expressed by the source and are deferred.
type TableCompiler struct {
	Schema  *types.Schema
	Columns map[string]Column
	// SearchColumns maps the schema's searchable fields onto substring searchable
	// columns. Free text is deferred unless every searchable field is mapped.
	SearchColumns map[string]string
	Sorts         map[string][]types.SortSpec
	ClientWindow  int
}

func (c *TableCompiler) clientWindow() int {
	if c.ClientWindow > 0 {
		return c.ClientWindow
	}
	return DefaultClientWindow
}

func (c *TableCompiler) Compile(sel types.FilterSelection, page types.PageState) types.QueryDescription {
	q := types.QueryDescription{
		Type:       c.Schema.Type,
		Predicates: make([]types.Predicate, 0),
		Deferred:   make([]string, 0),
		Search:     strings.TrimSpace(sel.Query),
	}

	for i := range c.Schema.Facets {
		spec := &c.Schema.Facets[i]
		if !sel.HasField(spec.Id) {
			continue
		}
		col, ok := c.Columns[spec.Id]
		if !ok {
			q.Deferred = append(q.Deferred, spec.Id)
			continue
		}
		if spec.Kind == types.RangeFacet {
			q.Predicates = append(q.Predicates, rangePredicates(spec, col, sel.Ranges[spec.Id])...)
			continue
		}
		if p, ok := valuePredicate(spec, col, sel.Values[spec.Id]); ok {
			q.Predicates = append(q.Predicates, p)
		}
	}

	if q.Search != "" {
		if columns, ok := c.searchColumns(); ok {
			q.Predicates = append(q.Predicates, SearchPredicates(columns, q.Search)...)
		} else {
			q.DeferSearch = true
		}
	}

	q.Sort = c.sortFor(sel.Sort)

	if len(q.Deferred) > 0 || q.DeferSearch {
		q.ClientPaged = true
		q.Window = types.Window{Offset: 0, Limit: c.clientWindow()}
	} else {
		q.Window = types.Window{Offset: page.Offset(), Limit: page.PageSize}
	}
	return q
}

func valuePredicate(spec *types.FacetSpec, col Column, values []string) (types.Predicate, bool) {
	if len(values) == 0 {
		return types.Predicate{}, false
	}
	values = slices.Clone(values)
	switch col.Op {
	case types.OpOverlaps:
		return types.Predicate{Facet: spec.Id, Field: col.Name, Op: types.OpOverlaps, Values: values}, true
	case types.OpILike:
		if len(values) == 1 {
			return types.Predicate{Facet: spec.Id, Field: col.Name, Op: types.OpILike, Value: values[0]}, true
		}
		group := types.Predicate{Facet: spec.Id, Op: types.OpOr, Any: make([]types.Predicate, 0, len(values))}
		for _, v := range values {
			group.Any = append(group.Any, types.Predicate{Field: col.Name, Op: types.OpILike, Value: v})
		}
		return group, true
	}
	if len(values) == 1 {
		return types.Predicate{Facet: spec.Id, Field: col.Name, Op: types.OpEq, Value: values[0]}, true
	}
	return types.Predicate{Facet: spec.Id, Field: col.Name, Op: types.OpIn, Values: values}, true
}

// rangePredicates emits inclusive bounds, absent bounds are left out. Date bounds
// cover the whole day.
func rangePredicates(spec *types.FacetSpec, col Column, r types.RangeValue) []types.Predicate {
	ret := make([]types.Predicate, 0, 2)
	if r.Min != "" {
		v := r.Min
		if spec.Range == types.DateRange {
			v += "T00:00:00Z"
		}
		ret = append(ret, types.Predicate{Facet: spec.Id, Field: col.Name, Op: types.OpGte, Value: v})
	}
	if r.Max != "" {
		v := r.Max
		if spec.Range == types.DateRange {
			v += "T23:59:59Z"
		}
		ret = append(ret, types.Predicate{Facet: spec.Id, Field: col.Name, Op: types.OpLte, Value: v})
	}
	return ret
}

func (c *TableCompiler) searchColumns() ([]string, bool) {
	if len(c.SearchColumns) == 0 {
		return nil, false
	}
	fields := c.Schema.Searchable()
	ret := make([]string, 0, len(fields))
	for _, f := range fields {
		col, ok := c.SearchColumns[f]
		if !ok {
			return nil, false
		}
		ret = append(ret, col)
	}
	return ret, true
}

// SearchPredicates emits one or group of substring matches per search term. The
// groups are ANDed like every other predicate.
func SearchPredicates(columns []string, text string) []types.Predicate {
	terms := types.SearchTerms(text)
	ret := make([]types.Predicate, 0, len(terms))
	for _, term := range terms {
		p := types.Predicate{Op: types.OpOr, Any: make([]types.Predicate, 0, len(columns))}
		for _, col := range columns {
			p.Any = append(p.Any, types.Predicate{Field: col, Op: types.OpILike, Value: term})
		}
		ret = append(ret, p)
	}
	return ret
}

func (c *TableCompiler) sortFor(key string) []types.SortSpec {
	if key == "" || !c.Schema.HasSort(key) {
		key = c.Schema.DefaultSort
	}
	if s, ok := c.Sorts[key]; ok {
		return slices.Clone(s)
	}
	return []types.SortSpec{{Field: "id"}}
}
