package types

import "maps"

// ItemList is a set of positions into a retrieved item slice.
type ItemList map[int]struct{}

func NewItemList() *ItemList {
	return &ItemList{}
}

func (i ItemList) AddId(id int) {
	i[id] = struct{}{}
}

func (i ItemList) Contains(id int) bool {
	_, ok := i[id]
	return ok
}

func (i ItemList) Len() int {
	return len(i)
}

func (i ItemList) IsEmpty() bool {
	return len(i) == 0
}

func (a ItemList) Intersect(b ItemList) {
	for id := range a {
		if _, ok := b[id]; !ok {
			delete(a, id)
		}
	}
}

func (i ItemList) Merge(other *ItemList) {
	if other == nil {
		return
	}
	maps.Copy(i, *other)
}

func (i ItemList) IntersectionLen(other ItemList) int {
	small, large := i, other
	if len(small) > len(large) {
		small, large = large, small
	}
	count := 0
	for id := range small {
		if _, ok := large[id]; ok {
			count++
		}
	}
	return count
}

func AllItems(n int) *ItemList {
	ret := make(ItemList, n)
	for i := range n {
		ret[i] = struct{}{}
	}
	return &ret
}
