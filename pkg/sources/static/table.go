package static

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matst80/slask-catalog/pkg/types"
)

// Tables is an in memory source keyed by table name. It understands the full
// predicate set and is used for local runs and tests.
type Tables struct {
	mu     sync.RWMutex
	tables map[string][]types.Row
	// Denied tables answer with a permission error.
	denied map[string]bool
}

func NewTables() *Tables {
	return &Tables{tables: map[string][]types.Row{}, denied: map[string]bool{}}
}

func (t *Tables) Put(table string, rows ...types.Row) *Tables {
	t.mu.Lock()
	t.tables[table] = append(t.tables[table], rows...)
	t.mu.Unlock()
	return t
}

func (t *Tables) Deny(table string) *Tables {
	t.mu.Lock()
	t.denied[table] = true
	t.mu.Unlock()
	return t
}

func (t *Tables) Query(ctx context.Context, req types.SourceRequest) (*types.SourceResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	rows, ok := t.tables[req.Table]
	denied := t.denied[req.Table]
	t.mu.RUnlock()
	if denied {
		return nil, fmt.Errorf("%s: %w", req.Table, types.ErrPermissionDenied)
	}
	if !ok {
		return nil, fmt.Errorf("relation %s does not exist: %w", req.Table, types.ErrSourceUnavailable)
	}

	matched := make([]types.Row, 0, len(rows))
	for _, row := range rows {
		if matchAll(row, req.Predicates) {
			matched = append(matched, row)
		}
	}
	if len(req.Sort) > 0 {
		slices.SortStableFunc(matched, func(a, b types.Row) int {
			for _, s := range req.Sort {
				c := types.CompareValues(text(a[s.Field]), text(b[s.Field]))
				if s.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	total := len(matched)
	start := min(req.Window.Offset, total)
	end := total
	if req.Window.Limit > 0 {
		end = min(start+req.Window.Limit, total)
	}
	ret := &types.SourceResponse{Rows: matched[start:end], Total: -1}
	if req.Count {
		ret.Total = total
	}
	return ret, nil
}

func text(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		ret := make([]string, 0, len(t))
		for _, x := range t {
			ret = append(ret, text(x)...)
		}
		return ret
	case time.Time:
		return []string{t.UTC().Format(time.RFC3339)}
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	case int:
		return []string{strconv.Itoa(t)}
	}
	return []string{fmt.Sprint(v)}
}

func matchAll(row types.Row, predicates []types.Predicate) bool {
	for _, p := range predicates {
		if !match(row, p) {
			return false
		}
	}
	return true
}

func match(row types.Row, p types.Predicate) bool {
	if p.Op == types.OpOr {
		for _, a := range p.Any {
			if match(row, a) {
				return true
			}
		}
		return false
	}
	values := text(row[p.Field])
	switch p.Op {
	case types.OpEq:
		return slices.Contains(values, p.Value)
	case types.OpIn, types.OpOverlaps:
		return slices.ContainsFunc(values, func(v string) bool { return slices.Contains(p.Values, v) })
	case types.OpGte:
		return slices.ContainsFunc(values, func(v string) bool { return types.CompareScalar(v, p.Value) >= 0 })
	case types.OpLte:
		return slices.ContainsFunc(values, func(v string) bool { return types.CompareScalar(v, p.Value) <= 0 })
	case types.OpILike:
		needle := strings.ToLower(p.Value)
		return slices.ContainsFunc(values, func(v string) bool { return strings.Contains(strings.ToLower(v), needle) })
	}
	return false
}
