package facet

import (
	"maps"
	"slices"

	"github.com/matst80/slask-catalog/pkg/types"
)

// Branch holds the child options seen under one parent option.
type Branch struct {
	Value    string
	Children *KeyField
}

// TreeField links a child facet to its parent. Children are counted per branch so
// only branches of allowed parents are shown.
type TreeField struct {
	Parent   *types.FacetSpec
	Spec     *types.FacetSpec
	Branches map[string]*Branch
	order    []string
}

func EmptyTreeField(parent, child *types.FacetSpec) *TreeField {
	return &TreeField{
		Parent:   parent,
		Spec:     child,
		Branches: map[string]*Branch{},
	}
}

func (t *TreeField) AddValueLink(parents, children []string, id int) bool {
	if len(parents) == 0 || len(children) == 0 {
		return false
	}
	for _, p := range parents {
		b, ok := t.Branches[p]
		if !ok {
			b = &Branch{Value: p, Children: EmptyKeyField(t.Spec)}
			t.Branches[p] = b
			t.order = append(t.order, p)
		}
		b.Children.AddValueLink(children, id)
	}
	return true
}

// AllowedParents is the selected parents, or every known parent when none is selected.
func (t *TreeField) AllowedParents(selected []string, taxonomy map[string][]string) []string {
	if len(selected) > 0 {
		return slices.Clone(selected)
	}
	ret := slices.Clone(t.order)
	for _, p := range slices.Sorted(maps.Keys(taxonomy)) {
		if !slices.Contains(ret, p) {
			ret = append(ret, p)
		}
	}
	return ret
}

// Allowed lists the child options reachable from the given parents, taxonomy first.
func (t *TreeField) Allowed(parents []string, taxonomy map[string][]string) []string {
	ret := make([]string, 0)
	add := func(v string) {
		if !slices.Contains(ret, v) {
			ret = append(ret, v)
		}
	}
	for _, p := range parents {
		for _, c := range taxonomy[p] {
			add(c)
		}
		if b, ok := t.Branches[p]; ok {
			for _, c := range b.Children.Values() {
				add(c)
			}
		}
	}
	return ret
}
