// Package facet counts facet options over a sample of catalog items. Every facet is
// counted over the items matching all other active selections but not its own.
package facet

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matst80/slask-catalog/pkg/types"
)

type Index struct {
	Schema *types.Schema
	size   int
	keys   map[string]*KeyField
	ranges map[string]*NumberField
	trees  map[string]*TreeField
}

func NewIndex(schema *types.Schema, items []types.CatalogItem) *Index {
	ix := &Index{
		Schema: schema,
		size:   len(items),
		keys:   map[string]*KeyField{},
		ranges: map[string]*NumberField{},
		trees:  map[string]*TreeField{},
	}
	for i := range schema.Facets {
		spec := &schema.Facets[i]
		if spec.Kind == types.RangeFacet {
			ix.ranges[spec.Id] = EmptyNumberField(spec)
			continue
		}
		ix.keys[spec.Id] = EmptyKeyField(spec)
		if spec.Parent != "" {
			if parent, ok := schema.Facet(spec.Parent); ok {
				ix.trees[spec.Id] = EmptyTreeField(parent, spec)
			}
		}
	}
	for id := range items {
		item := &items[id]
		for fid, f := range ix.keys {
			values := item.Field(f.Spec.AttributeKey())
			f.AddValueLink(values, id)
			if tree, ok := ix.trees[fid]; ok {
				tree.AddValueLink(item.Field(tree.Parent.AttributeKey()), values, id)
			}
		}
		for _, f := range ix.ranges {
			f.AddValueLink(item, id)
		}
	}
	return ix
}

// match returns the positions satisfying one facet's selection, nil when it has none.
func (ix *Index) match(id string, sel *types.FilterSelection) *types.ItemList {
	if f, ok := ix.keys[id]; ok {
		return f.Match(sel.Values[id])
	}
	if f, ok := ix.ranges[id]; ok {
		return f.Match(sel.Ranges[id])
	}
	return nil
}

// Matching intersects the selections of every facet except the skipped ones.
func (ix *Index) Matching(ctx context.Context, sel types.FilterSelection, skip ...string) *types.ItemList {
	in := types.NewIntersection(ctx)
	for i := range ix.Schema.Facets {
		id := ix.Schema.Facets[i].Id
		if slices.Contains(skip, id) || !sel.HasField(id) {
			continue
		}
		in.Add(func(context.Context) *types.ItemList {
			return ix.match(id, &sel)
		})
	}
	result, restricted := in.Wait()
	if !restricted {
		return types.AllItems(ix.size)
	}
	return result
}

type Result struct {
	Facets []types.FacetDefinition
	// Allowed holds the reachable options of every two level child facet.
	Allowed map[string][]string
}

// Compute aggregates the sample for the current selection.
func Compute(ctx context.Context, schema *types.Schema, items []types.CatalogItem, sel types.FilterSelection) *Result {
	ix := NewIndex(schema, items)
	defs := make([]*types.FacetDefinition, len(schema.Facets))
	allowed := make([][]string, len(schema.Facets))

	wg := sync.WaitGroup{}
	for i := range schema.Facets {
		spec := &schema.Facets[i]
		if spec.Hide {
			continue
		}
		wg.Go(func() {
			base := ix.Matching(ctx, sel, spec.Id)
			switch {
			case spec.Kind == types.RangeFacet:
				defs[i] = ix.rangeFacet(spec, sel, *base)
			case ix.trees[spec.Id] != nil:
				defs[i], allowed[i] = ix.treeFacet(spec, sel, *base)
			default:
				defs[i] = ix.keyFacet(spec, sel, *base)
			}
		})
	}
	wg.Wait()

	ret := &Result{
		Facets:  make([]types.FacetDefinition, 0, len(defs)),
		Allowed: map[string][]string{},
	}
	for i, def := range defs {
		if def != nil {
			ret.Facets = append(ret.Facets, *def)
		}
		if allowed[i] != nil {
			ret.Allowed[schema.Facets[i].Id] = allowed[i]
		}
	}
	return ret
}

func selectedValue(spec *types.FacetSpec, sel types.FilterSelection) any {
	switch spec.Kind {
	case types.RangeFacet:
		if r, ok := sel.Ranges[spec.Id]; ok {
			return r
		}
	case types.ExclusiveFacet:
		if v := sel.Values[spec.Id]; len(v) > 0 {
			return v[0]
		}
	default:
		if v := sel.Values[spec.Id]; len(v) > 0 {
			return slices.Clone(v)
		}
	}
	return nil
}

// options counts values of f within base. Closed facets list every option in
// schema order, open facets the seen values by count. Selected values are always kept.
func options(f *KeyField, sel types.FilterSelection, base types.ItemList, candidates []string) []types.FacetOption {
	ret := make([]types.FacetOption, 0, len(candidates))
	for _, v := range candidates {
		count := 0
		if ids, ok := f.Keys[v]; ok {
			count = ids.IntersectionLen(base)
		}
		if count == 0 && !f.Spec.IsClosed() && !sel.IsSelected(f.Spec.Id, v) {
			continue
		}
		ret = append(ret, types.FacetOption{Id: v, Label: f.Spec.Label(v), Count: count})
	}
	if !f.Spec.IsClosed() {
		slices.SortStableFunc(ret, func(a, b types.FacetOption) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return cmp.Compare(a.Label, b.Label)
		})
	}
	return ret
}

func candidates(f *KeyField, sel types.FilterSelection) []string {
	if f.Spec.IsClosed() {
		return f.Spec.Options
	}
	ret := slices.Clone(f.Values())
	for _, v := range sel.Values[f.Spec.Id] {
		if !slices.Contains(ret, v) {
			ret = append(ret, v)
		}
	}
	return ret
}

func (ix *Index) keyFacet(spec *types.FacetSpec, sel types.FilterSelection, base types.ItemList) *types.FacetDefinition {
	f := ix.keys[spec.Id]
	return &types.FacetDefinition{
		Id:       spec.Id,
		Title:    spec.Title,
		Options:  options(f, sel, base, candidates(f, sel)),
		Selected: selectedValue(spec, sel),
	}
}

func (ix *Index) rangeFacet(spec *types.FacetSpec, sel types.FilterSelection, base types.ItemList) *types.FacetDefinition {
	return &types.FacetDefinition{
		Id:       spec.Id,
		Title:    spec.Title,
		Extent:   ix.ranges[spec.Id].Extent(base),
		Selected: selectedValue(spec, sel),
	}
}

func (ix *Index) treeFacet(spec *types.FacetSpec, sel types.FilterSelection, base types.ItemList) (*types.FacetDefinition, []string) {
	tree := ix.trees[spec.Id]
	parents := tree.AllowedParents(sel.Values[tree.Parent.Id], ix.Schema.Taxonomy)
	allowed := tree.Allowed(parents, ix.Schema.Taxonomy)

	def := &types.FacetDefinition{
		Id:       spec.Id,
		Title:    spec.Title,
		Groups:   make([]types.FacetGroup, 0, len(parents)),
		Selected: selectedValue(spec, sel),
	}
	parentKeys := ix.keys[tree.Parent.Id]
	for _, p := range parents {
		group := types.FacetGroup{Id: p, Label: tree.Parent.Label(p)}
		if ids, ok := parentKeys.Keys[p]; ok {
			group.Count = ids.IntersectionLen(base)
		}
		children := tree.Allowed([]string{p}, ix.Schema.Taxonomy)
		branch, ok := tree.Branches[p]
		if !ok {
			branch = &Branch{Value: p, Children: EmptyKeyField(spec)}
		}
		group.Options = make([]types.FacetOption, 0, len(children))
		for _, c := range children {
			count := 0
			if ids, ok := branch.Children.Keys[c]; ok {
				count = ids.IntersectionLen(base)
			}
			group.Options = append(group.Options, types.FacetOption{Id: c, Label: spec.Label(c), Count: count})
		}
		def.Groups = append(def.Groups, group)
	}
	return def, allowed
}

// Prune drops selected child options that are not reachable from the selected
// parents. It reports whether anything changed. Children of an unselected parent
// are left alone.
func Prune(schema *types.Schema, sel types.FilterSelection, allowed map[string][]string) (types.FilterSelection, bool) {
	ret := sel
	changed := false
	for i := range schema.Facets {
		spec := &schema.Facets[i]
		if spec.Parent == "" || len(sel.Values[spec.Parent]) == 0 {
			continue
		}
		reachable, ok := allowed[spec.Id]
		if !ok {
			continue
		}
		current := sel.Values[spec.Id]
		kept := make([]string, 0, len(current))
		for _, v := range current {
			if slices.Contains(reachable, v) {
				kept = append(kept, v)
			}
		}
		if len(kept) != len(current) {
			ret = ret.With(spec.Id, kept...)
			changed = true
		}
	}
	return ret, changed
}
