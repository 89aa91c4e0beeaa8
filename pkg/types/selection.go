package types

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

const RangeSeparator = ".."

// RangeValue holds inclusive bounds, an empty bound means open.
type RangeValue struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

func (r RangeValue) IsEmpty() bool {
	return r.Min == "" && r.Max == ""
}

func (r RangeValue) String() string {
	return r.Min + RangeSeparator + r.Max
}

func ParseRange(value string) (RangeValue, bool) {
	lo, hi, ok := strings.Cut(value, RangeSeparator)
	if !ok {
		return RangeValue{}, false
	}
	r := RangeValue{Min: strings.TrimSpace(lo), Max: strings.TrimSpace(hi)}
	return r, !r.IsEmpty()
}

// FilterSelection is the user's facet state together with the free text query and sort key.
type FilterSelection struct {
	Query  string                `json:"q,omitempty"`
	Sort   string                `json:"sort,omitempty"`
	Values map[string][]string   `json:"values,omitempty"`
	Ranges map[string]RangeValue `json:"ranges,omitempty"`
}

func NewFilterSelection() FilterSelection {
	return FilterSelection{
		Values: map[string][]string{},
		Ranges: map[string]RangeValue{},
	}
}

func (s FilterSelection) Clone() FilterSelection {
	ret := FilterSelection{
		Query:  s.Query,
		Sort:   s.Sort,
		Values: make(map[string][]string, len(s.Values)),
		Ranges: make(map[string]RangeValue, len(s.Ranges)),
	}
	for id, v := range s.Values {
		ret.Values[id] = slices.Clone(v)
	}
	maps.Copy(ret.Ranges, s.Ranges)
	return ret
}

func (s FilterSelection) Selected(id string) []string {
	return s.Values[id]
}

func (s FilterSelection) IsSelected(id, value string) bool {
	return slices.Contains(s.Values[id], value)
}

// With returns a copy where the facet holds exactly the given values, no values removes the facet.
func (s FilterSelection) With(id string, values ...string) FilterSelection {
	ret := s.Clone()
	clean := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(clean, v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		delete(ret.Values, id)
	} else {
		ret.Values[id] = clean
	}
	return ret
}

func (s FilterSelection) WithRange(id string, r RangeValue) FilterSelection {
	ret := s.Clone()
	if r.IsEmpty() {
		delete(ret.Ranges, id)
	} else {
		ret.Ranges[id] = r
	}
	return ret
}

// WithOut drops the selections for the given facets, keeping query and sort.
func (s FilterSelection) WithOut(ids ...string) FilterSelection {
	ret := s.Clone()
	for _, id := range ids {
		delete(ret.Values, id)
		delete(ret.Ranges, id)
	}
	return ret
}

func (s FilterSelection) HasField(id string) bool {
	if _, ok := s.Values[id]; ok {
		return true
	}
	_, ok := s.Ranges[id]
	return ok
}

func (s FilterSelection) HasFacets() bool {
	return len(s.Values) > 0 || len(s.Ranges) > 0
}

// Equal compares selections treating multi values as sets.
func (s FilterSelection) Equal(o FilterSelection) bool {
	return s.Signature() == o.Signature()
}

// Signature is a canonical representation independent of value and map order.
func (s FilterSelection) Signature() string {
	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(strconv.Quote(strings.TrimSpace(s.Query)))
	b.WriteString(";sort=")
	b.WriteString(s.Sort)
	for _, id := range slices.Sorted(maps.Keys(s.Values)) {
		values := slices.Clone(s.Values[id])
		if len(values) == 0 {
			continue
		}
		slices.Sort(values)
		b.WriteString(";")
		b.WriteString(id)
		b.WriteString("=")
		for i, v := range values {
			if i > 0 {
				b.WriteString("|")
			}
			b.WriteString(strconv.Quote(v))
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.Ranges)) {
		b.WriteString(";")
		b.WriteString(id)
		b.WriteString("~")
		b.WriteString(s.Ranges[id].String())
	}
	return b.String()
}

type PageState struct {
	Page     int `json:"page" schema:"page"`
	PageSize int `json:"pageSize" schema:"pageSize"`
}

func (p PageState) Offset() int {
	return (max(p.Page, 1) - 1) * p.PageSize
}

// ViewState is everything that survives a reload through the URL.
type ViewState struct {
	Selection FilterSelection `json:"selection"`
	Page      PageState       `json:"page"`
}

func (v ViewState) Signature() string {
	return v.Selection.Signature() + ";page=" + strconv.Itoa(v.Page.Page) + ";size=" + strconv.Itoa(v.Page.PageSize)
}
