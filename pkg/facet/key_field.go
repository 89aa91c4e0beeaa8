package facet

import (
	"github.com/matst80/slask-catalog/pkg/types"
)

// KeyField maps every value of a discrete facet to the sample positions holding it.
type KeyField struct {
	Spec *types.FacetSpec
	Keys map[string]types.ItemList
	// order keeps first seen order for open option sets.
	order []string
}

func EmptyKeyField(spec *types.FacetSpec) *KeyField {
	return &KeyField{
		Spec: spec,
		Keys: map[string]types.ItemList{},
	}
}

func (f *KeyField) AddValueLink(values []string, id int) bool {
	added := false
	for _, v := range values {
		if v == "" {
			continue
		}
		if k, ok := f.Keys[v]; ok {
			k.AddId(id)
		} else {
			f.Keys[v] = types.ItemList{id: struct{}{}}
			f.order = append(f.order, v)
		}
		added = true
	}
	return added
}

// Match returns the union of positions for the selected values, using the
// facet's match mode. Nil means nothing is selected.
func (f *KeyField) Match(selected []string) *types.ItemList {
	if len(selected) == 0 {
		return nil
	}
	ret := types.NewItemList()
	for key, ids := range f.Keys {
		if f.Spec.Matches([]string{key}, selected) {
			ret.Merge(&ids)
		}
	}
	return ret
}

func (f *KeyField) Values() []string {
	return f.order
}

func (f *KeyField) Len() int {
	return len(f.Keys)
}
