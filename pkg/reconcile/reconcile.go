// Package reconcile applies, on the client, the parts of a selection a source could not express.
package reconcile

import (
	"slices"
	"strings"

	"github.com/matst80/slask-catalog/pkg/types"
)

// Deferral lists what the serving source left undone.
type Deferral struct {
	Facets []string
	Search bool
}

func FromResult(res *types.RetrievalResult) Deferral {
	return Deferral{Facets: res.Deferred, Search: res.DeferSearch}
}

// Apply filters items by deferred search and deferred facets, then drops repeated
// ids keeping the first occurrence. It never mutates items.
func Apply(schema *types.Schema, items []types.CatalogItem, sel types.FilterSelection, d Deferral) []types.CatalogItem {
	terms := []string(nil)
	if d.Search {
		terms = types.SearchTerms(sel.Query)
	}
	specs := make([]*types.FacetSpec, 0, len(d.Facets))
	for _, id := range d.Facets {
		if spec, ok := schema.Facet(id); ok && sel.HasField(id) {
			specs = append(specs, spec)
		}
	}

	seen := make(map[string]struct{}, len(items))
	ret := make([]types.CatalogItem, 0, len(items))
	for i := range items {
		item := &items[i]
		if len(terms) > 0 && !MatchesSearch(item, schema.Searchable(), terms) {
			continue
		}
		if !matchesFacets(item, specs, sel) {
			continue
		}
		if _, ok := seen[item.Id]; ok {
			continue
		}
		seen[item.Id] = struct{}{}
		ret = append(ret, *item)
	}
	return ret
}

// MatchesSearch requires every term to occur in at least one searchable field.
func MatchesSearch(item *types.CatalogItem, fields []string, terms []string) bool {
	if len(fields) == 0 {
		fields = types.DefaultSearchFields
	}
	haystack := make([]string, 0, len(fields))
	for _, f := range fields {
		for _, v := range item.Field(f) {
			haystack = append(haystack, strings.ToLower(v))
		}
	}
	for _, term := range terms {
		if !slices.ContainsFunc(haystack, func(h string) bool { return strings.Contains(h, term) }) {
			return false
		}
	}
	return true
}

func matchesFacets(item *types.CatalogItem, specs []*types.FacetSpec, sel types.FilterSelection) bool {
	for _, spec := range specs {
		if spec.Kind == types.RangeFacet {
			r, ok := sel.Ranges[spec.Id]
			if !ok || r.IsEmpty() {
				continue
			}
			v, ok := spec.NumericValue(item)
			if !ok || !spec.InRange(r, v) {
				return false
			}
			continue
		}
		selected := sel.Values[spec.Id]
		if len(selected) == 0 {
			continue
		}
		if !spec.Matches(item.Field(spec.AttributeKey()), selected) {
			return false
		}
	}
	return true
}
