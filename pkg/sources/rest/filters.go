package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matst80/slask-catalog/pkg/types"
)

// quote wraps values holding reserved characters of the filter grammar.
func quote(v string) string {
	if !strings.ContainsAny(v, `,.:()" \`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}

func list(values []string, open, close string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, quote(v))
	}
	return open + strings.Join(quoted, ",") + close
}

func wildcard(v string) string {
	return "*" + strings.ReplaceAll(v, "*", "") + "*"
}

// operand renders the right hand side of a filter, "eq.value", "in.(a,b)" and so on.
func operand(p types.Predicate, nested bool) (string, error) {
	switch p.Op {
	case types.OpEq, types.OpGte, types.OpLte:
		if nested {
			return string(p.Op) + "." + quote(p.Value), nil
		}
		return string(p.Op) + "." + p.Value, nil
	case types.OpIn:
		return "in." + list(p.Values, "(", ")"), nil
	case types.OpOverlaps:
		return "ov." + list(p.Values, "{", "}"), nil
	case types.OpILike:
		if nested {
			return "ilike." + quote(wildcard(p.Value)), nil
		}
		return "ilike." + wildcard(p.Value), nil
	}
	return "", fmt.Errorf("unsupported operator %q", p.Op)
}

func orGroup(p types.Predicate) (string, error) {
	parts := make([]string, 0, len(p.Any))
	for _, a := range p.Any {
		if a.Op == types.OpOr {
			inner, err := orGroup(a)
			if err != nil {
				return "", err
			}
			parts = append(parts, "or"+inner)
			continue
		}
		op, err := operand(a, true)
		if err != nil {
			return "", err
		}
		parts = append(parts, a.Field+"."+op)
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

func orderParam(sort []types.SortSpec) string {
	parts := make([]string, 0, len(sort))
	for _, s := range sort {
		if s.Desc {
			parts = append(parts, s.Field+".desc.nullslast")
		} else {
			parts = append(parts, s.Field+".asc")
		}
	}
	return strings.Join(parts, ",")
}

// Params renders a request in the PostgREST filter dialect.
func Params(req types.SourceRequest) (url.Values, error) {
	params := url.Values{}
	params.Set("select", "*")
	groups := make([]string, 0)
	for _, p := range req.Predicates {
		if p.Op == types.OpOr {
			if len(p.Any) == 0 {
				return nil, fmt.Errorf("empty or group")
			}
			group, err := orGroup(p)
			if err != nil {
				return nil, err
			}
			groups = append(groups, group)
			continue
		}
		op, err := operand(p, false)
		if err != nil {
			return nil, err
		}
		params.Add(p.Field, op)
	}
	// Several or groups are nested in one and filter instead of repeating the key.
	switch len(groups) {
	case 0:
	case 1:
		params.Set("or", groups[0])
	default:
		params.Set("and", "(or"+strings.Join(groups, ",or")+")")
	}
	if len(req.Sort) > 0 {
		params.Set("order", orderParam(req.Sort))
	}
	if req.Window.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Window.Limit))
	}
	if req.Window.Offset > 0 {
		params.Set("offset", strconv.Itoa(req.Window.Offset))
	}
	return params, nil
}

// parseContentRange reads the total from "0-8/47" or "*/0", -1 when unknown.
func parseContentRange(header string) int {
	_, total, ok := strings.Cut(header, "/")
	if !ok || total == "*" {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil {
		return -1
	}
	return n
}
