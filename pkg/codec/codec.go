// Package codec maps view state to and from the shareable URL query string.
package codec

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"github.com/matst80/slask-catalog/pkg/pager"
	"github.com/matst80/slask-catalog/pkg/types"
)

const (
	QueryKey    = "q"
	SortKey     = "sort"
	PageKey     = "page"
	PageSizeKey = "pageSize"

	valueSeparator = ","
	valueEscape    = `\`
	dateLayout     = time.DateOnly
)

var reservedKeys = []string{QueryKey, SortKey, PageKey, PageSizeKey}

type scalarParams struct {
	Query    string `schema:"q,omitempty"`
	Sort     string `schema:"sort,omitempty"`
	Page     int    `schema:"page,omitempty"`
	PageSize int    `schema:"pageSize,omitempty"`
}

var (
	decoder = schema.NewDecoder()
	encoder = schema.NewEncoder()
)

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type Codec struct {
	Schema *types.Schema
}

func New(s *types.Schema) *Codec {
	return &Codec{Schema: s}
}

// Decode reads the view state from a query. Unknown keys are ignored and
// malformed values are dropped or clamped instead of reported.
func (c *Codec) Decode(query url.Values) types.ViewState {
	params := scalarParams{}
	if err := decoder.Decode(&params, query); err != nil {
		log.Debugf("repairing malformed url state for %s: %v", c.Schema.Type, err)
	}

	sel := types.NewFilterSelection()
	sel.Query = strings.TrimSpace(params.Query)
	if params.Sort != "" && c.Schema.HasSort(params.Sort) {
		sel.Sort = params.Sort
	}

	for i := range c.Schema.Facets {
		spec := &c.Schema.Facets[i]
		raw := strings.TrimSpace(query.Get(spec.Id))
		if raw == "" {
			continue
		}
		switch spec.Kind {
		case types.RangeFacet:
			if r, ok := c.decodeRange(spec, raw); ok {
				sel.Ranges[spec.Id] = r
			}
		case types.ExclusiveFacet:
			if values := decodeValues(spec, raw); len(values) > 0 {
				sel.Values[spec.Id] = values[:1]
			}
		default:
			if values := decodeValues(spec, raw); len(values) > 0 {
				sel.Values[spec.Id] = values
			}
		}
	}

	return types.ViewState{
		Selection: sel,
		Page: types.PageState{
			Page:     max(params.Page, 1),
			PageSize: pager.ClampPageSize(params.PageSize, c.Schema.DefaultPageSize, c.Schema.PageSizeLimit()),
		},
	}
}

var valueEscaper = strings.NewReplacer(valueEscape, valueEscape+valueEscape, valueSeparator, valueEscape+valueSeparator)

// joinValues escapes separators inside values so open facets may hold any text.
func joinValues(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = valueEscaper.Replace(v)
	}
	return strings.Join(escaped, valueSeparator)
}

// splitValues splits on unescaped separators. A trailing escape is dropped.
func splitValues(raw string) []string {
	ret := make([]string, 0)
	var cur strings.Builder
	escaped := false
	for _, r := range raw {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case string(r) == valueEscape:
			escaped = true
		case string(r) == valueSeparator:
			ret = append(ret, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(ret, cur.String())
}

func decodeValues(spec *types.FacetSpec, raw string) []string {
	ret := make([]string, 0)
	for _, part := range splitValues(raw) {
		v := strings.TrimSpace(part)
		if v == "" || slices.Contains(ret, v) || !spec.AcceptsOption(v) {
			continue
		}
		ret = append(ret, v)
	}
	return ret
}

func (c *Codec) decodeRange(spec *types.FacetSpec, raw string) (types.RangeValue, bool) {
	r, ok := types.ParseRange(raw)
	if !ok {
		return r, false
	}
	if !validBound(spec.Range, r.Min) {
		r.Min = ""
	}
	if !validBound(spec.Range, r.Max) {
		r.Max = ""
	}
	if r.Min != "" && r.Max != "" && boundLess(spec.Range, r.Max, r.Min) {
		r.Min, r.Max = r.Max, r.Min
	}
	return r, !r.IsEmpty()
}

func validBound(kind types.RangeKind, value string) bool {
	if value == "" {
		return true
	}
	if kind == types.DateRange {
		_, err := time.Parse(dateLayout, value)
		return err == nil
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func boundLess(kind types.RangeKind, a, b string) bool {
	if kind == types.DateRange {
		return a < b
	}
	fa, _ := strconv.ParseFloat(a, 64)
	fb, _ := strconv.ParseFloat(b, 64)
	return fa < fb
}

// Encode writes the view state on top of base. Keys the codec does not own are
// copied verbatim, neither state nor base are modified.
func (c *Codec) Encode(state types.ViewState, base url.Values) url.Values {
	ret := url.Values{}
	for key, values := range base {
		if c.owns(key) {
			continue
		}
		ret[key] = slices.Clone(values)
	}

	params := scalarParams{
		Query: strings.TrimSpace(state.Selection.Query),
		Sort:  state.Selection.Sort,
	}
	if state.Page.Page > 1 {
		params.Page = state.Page.Page
	}
	if state.Page.PageSize > 0 && state.Page.PageSize != c.Schema.DefaultPageSize {
		params.PageSize = state.Page.PageSize
	}
	if err := encoder.Encode(params, ret); err != nil {
		log.Errorf("failed to encode url state for %s: %v", c.Schema.Type, err)
	}

	for i := range c.Schema.Facets {
		spec := &c.Schema.Facets[i]
		if spec.Kind == types.RangeFacet {
			if r, ok := state.Selection.Ranges[spec.Id]; ok && !r.IsEmpty() {
				ret.Set(spec.Id, r.String())
			}
			continue
		}
		if values := state.Selection.Values[spec.Id]; len(values) > 0 {
			ret.Set(spec.Id, joinValues(values))
		}
	}
	return ret
}

func (c *Codec) owns(key string) bool {
	if slices.Contains(reservedKeys, key) {
		return true
	}
	_, ok := c.Schema.Facet(key)
	return ok
}

// QueryString encodes values with sorted keys, leaving the value separator readable.
func QueryString(values url.Values) string {
	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(values)) {
		for _, v := range values[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(strings.ReplaceAll(url.QueryEscape(v), "%2C", valueSeparator))
		}
	}
	return b.String()
}

// String is Encode followed by QueryString.
func (c *Codec) String(state types.ViewState, base url.Values) string {
	return QueryString(c.Encode(state, base))
}
