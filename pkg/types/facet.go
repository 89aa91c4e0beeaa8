package types

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

type FacetKind uint8

const (
	MultiFacet FacetKind = iota
	ExclusiveFacet
	RangeFacet
)

type MatchMode uint8

const (
	MatchExact MatchMode = iota
	MatchSubstring
)

type RangeKind uint8

const (
	NumberRange RangeKind = iota
	DateRange
)

// FacetSpec describes one filter dimension of a content type.
type FacetSpec struct {
	Id        string            `json:"id"`
	Title     string            `json:"title"`
	Attribute string            `json:"-"`
	Kind      FacetKind         `json:"kind"`
	Match     MatchMode         `json:"-"`
	Range     RangeKind         `json:"range,omitempty"`
	Parent    string            `json:"parent,omitempty"`
	Options   []string          `json:"options,omitempty"`
	Labels    map[string]string `json:"-"`
	Hide      bool              `json:"hide,omitempty"`
}

func (f *FacetSpec) AttributeKey() string {
	if f.Attribute != "" {
		return f.Attribute
	}
	return f.Id
}

func (f *FacetSpec) Label(option string) string {
	if l, ok := f.Labels[option]; ok {
		return l
	}
	return option
}

// IsClosed reports whether the option set is fixed, so unknown values can be dropped on decode.
func (f *FacetSpec) IsClosed() bool {
	return len(f.Options) > 0
}

func (f *FacetSpec) AcceptsOption(option string) bool {
	if !f.IsClosed() {
		return true
	}
	return slices.Contains(f.Options, option)
}

// Matches reports whether an item's values satisfy the selected options, any
// selected option is enough.
func (f *FacetSpec) Matches(itemValues, selected []string) bool {
	for _, want := range selected {
		for _, have := range itemValues {
			if f.Match == MatchSubstring {
				if strings.Contains(strings.ToLower(have), strings.ToLower(want)) {
					return true
				}
			} else if have == want {
				return true
			}
		}
	}
	return false
}

// NumericValue is what a range facet compares, dates as unix seconds of the start time.
func (f *FacetSpec) NumericValue(item *CatalogItem) (float64, bool) {
	if f.Range == DateRange {
		if item.Timestamp.IsZero() {
			return 0, false
		}
		return float64(item.Timestamp.Unix()), true
	}
	v, err := strconv.ParseFloat(item.Attributes.First(f.AttributeKey()), 64)
	return v, err == nil
}

// Bounds converts a range selection to numbers, date bounds cover whole days.
func (f *FacetSpec) Bounds(r RangeValue) (lo, hi float64, hasLo, hasHi bool) {
	parse := func(v string, end bool) (float64, bool) {
		if v == "" {
			return 0, false
		}
		if f.Range == DateRange {
			t, err := time.Parse(time.DateOnly, v)
			if err != nil {
				return 0, false
			}
			if end {
				t = t.Add(24*time.Hour - time.Second)
			}
			return float64(t.Unix()), true
		}
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	}
	lo, hasLo = parse(r.Min, false)
	hi, hasHi = parse(r.Max, true)
	return
}

func (f *FacetSpec) InRange(r RangeValue, v float64) bool {
	lo, hi, hasLo, hasHi := f.Bounds(r)
	return (!hasLo || v >= lo) && (!hasHi || v <= hi)
}

// FormatBound renders a numeric value back into the selection format.
func (f *FacetSpec) FormatBound(v float64) string {
	if f.Range == DateRange {
		return time.Unix(int64(v), 0).UTC().Format(time.DateOnly)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type Schema struct {
	Type            ContentType
	Facets          []FacetSpec
	Sorts           []string
	DefaultSort     string
	DefaultPageSize int
	MaxPageSize     int
	SearchFields    []string
	// Taxonomy lists known children for parent options of two level facets.
	Taxonomy map[string][]string
}

func (s *Schema) Facet(id string) (*FacetSpec, bool) {
	for i := range s.Facets {
		if s.Facets[i].Id == id {
			return &s.Facets[i], true
		}
	}
	return nil, false
}

// Children returns the facets that depend on the given parent facet.
func (s *Schema) Children(parentId string) []*FacetSpec {
	ret := make([]*FacetSpec, 0)
	for i := range s.Facets {
		if s.Facets[i].Parent == parentId {
			ret = append(ret, &s.Facets[i])
		}
	}
	return ret
}

// DefaultSearchFields are searched when a schema names none.
var DefaultSearchFields = []string{"title", "summary"}

// Searchable lists the logical fields free text is matched against.
func (s *Schema) Searchable() []string {
	if len(s.SearchFields) > 0 {
		return s.SearchFields
	}
	return DefaultSearchFields
}

// SearchTerms splits free text into lower cased words. An item matches when
// every word occurs in at least one searchable field.
func SearchTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

func (s *Schema) HasSort(sort string) bool {
	return slices.Contains(s.Sorts, sort)
}

func (s *Schema) PageSizeLimit() int {
	if s.MaxPageSize > 0 {
		return s.MaxPageSize
	}
	return 50
}

type FacetOption struct {
	Id    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type FacetGroup struct {
	Id      string        `json:"id"`
	Label   string        `json:"label"`
	Count   int           `json:"count"`
	Options []FacetOption `json:"options"`
}

type FacetDefinition struct {
	Id       string        `json:"id"`
	Title    string        `json:"title"`
	Options  []FacetOption `json:"options,omitempty"`
	Groups   []FacetGroup  `json:"groups,omitempty"`
	Extent   *RangeValue   `json:"extent,omitempty"`
	Selected any           `json:"selected,omitempty"`
}
