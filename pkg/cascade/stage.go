package cascade

import (
	"slices"
	"time"

	"github.com/matst80/slask-catalog/pkg/types"
)

// Normalizer maps one raw row of a stage's source onto the common item projection.
// Rows that cannot be mapped are skipped.
type Normalizer func(row types.Row) (types.CatalogItem, bool)

// Stage is one retrieval attempt against one source.
type Stage struct {
	Name   string
	Source types.Source
	Table  string
	// Columns renames logical fields for this source. When set, predicates touching
	// a field it does not list are left to the reconciler for this stage only.
	Columns map[string]string
	// Fixed adds stage specific restrictions such as status or visibility.
	Fixed func(now time.Time, policy types.AccessPolicy) []types.Predicate
	// Sort replaces the compiled ordering when its primary key does not map onto this source.
	Sort      []types.SortSpec
	Normalize Normalizer
}

type plan struct {
	req         types.SourceRequest
	deferred    []string
	deferSearch bool
	clientPaged bool
}

func (s *Stage) column(field string) (string, bool) {
	if s.Columns == nil {
		return field, true
	}
	col, ok := s.Columns[field]
	return col, ok
}

func (s *Stage) mapPredicate(p types.Predicate) (types.Predicate, bool) {
	if p.Op == types.OpOr {
		ret := p
		ret.Any = make([]types.Predicate, 0, len(p.Any))
		for _, a := range p.Any {
			mapped, ok := s.mapPredicate(a)
			if !ok {
				return p, false
			}
			ret.Any = append(ret.Any, mapped)
		}
		return ret, true
	}
	col, ok := s.column(p.Field)
	if !ok {
		return p, false
	}
	ret := p
	ret.Field = col
	ret.Values = slices.Clone(p.Values)
	return ret, true
}

func (s *Stage) prepare(q *types.QueryDescription, now time.Time, policy types.AccessPolicy, clientWindow int) plan {
	p := plan{
		req: types.SourceRequest{
			Table:      s.Table,
			Predicates: make([]types.Predicate, 0, len(q.Predicates)),
			Window:     q.Window,
			Count:      !q.ClientPaged,
		},
		deferred:    make([]string, 0),
		clientPaged: q.ClientPaged,
	}
	for _, pred := range q.Predicates {
		mapped, ok := s.mapPredicate(pred)
		if ok {
			p.req.Predicates = append(p.req.Predicates, mapped)
			continue
		}
		if pred.Facet == "" {
			p.deferSearch = true
		} else if !slices.Contains(p.deferred, pred.Facet) {
			p.deferred = append(p.deferred, pred.Facet)
		}
	}
	if s.Fixed != nil {
		p.req.Predicates = append(p.req.Predicates, s.Fixed(now, policy)...)
	}

	for i, srt := range q.Sort {
		col, ok := s.column(srt.Field)
		if !ok {
			if i == 0 && len(s.Sort) > 0 {
				p.req.Sort = slices.Clone(s.Sort)
				break
			}
			continue
		}
		p.req.Sort = append(p.req.Sort, types.SortSpec{Field: col, Desc: srt.Desc})
	}
	if len(q.Sort) == 0 && len(s.Sort) > 0 {
		p.req.Sort = slices.Clone(s.Sort)
	}

	if (len(p.deferred) > 0 || p.deferSearch) && !p.clientPaged {
		p.clientPaged = true
		p.req.Window = types.Window{Offset: 0, Limit: clientWindow}
		p.req.Count = false
	}
	return p
}

func (s *Stage) normalize(rows []types.Row) []types.CatalogItem {
	items := make([]types.CatalogItem, 0, len(rows))
	for _, row := range rows {
		if s.Normalize == nil {
			continue
		}
		if item, ok := s.Normalize(row); ok {
			items = append(items, item)
		}
	}
	return items
}
