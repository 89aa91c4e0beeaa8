package facet

import (
	"github.com/matst80/slask-catalog/pkg/types"
)

// NumberField keeps the comparable value of a range facet per sample position.
type NumberField struct {
	Spec   *types.FacetSpec
	Values map[int]float64
}

func EmptyNumberField(spec *types.FacetSpec) *NumberField {
	return &NumberField{
		Spec:   spec,
		Values: map[int]float64{},
	}
}

func (f *NumberField) AddValueLink(item *types.CatalogItem, id int) bool {
	v, ok := f.Spec.NumericValue(item)
	if ok {
		f.Values[id] = v
	}
	return ok
}

func (f *NumberField) Match(r types.RangeValue) *types.ItemList {
	if r.IsEmpty() {
		return nil
	}
	ret := types.NewItemList()
	for id, v := range f.Values {
		if f.Spec.InRange(r, v) {
			ret.AddId(id)
		}
	}
	return ret
}

// Extent is the min and max among the given positions.
func (f *NumberField) Extent(ids types.ItemList) *types.RangeValue {
	var lo, hi float64
	found := false
	for id := range ids {
		v, ok := f.Values[id]
		if !ok {
			continue
		}
		if !found || v < lo {
			lo = v
		}
		if !found || v > hi {
			hi = v
		}
		found = true
	}
	if !found {
		return nil
	}
	return &types.RangeValue{Min: f.Spec.FormatBound(lo), Max: f.Spec.FormatBound(hi)}
}
