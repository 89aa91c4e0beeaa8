package pg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/matst80/slask-catalog/pkg/types"
)

// Statement is a parameterized select plus the matching count query.
type Statement struct {
	SQL      string
	CountSQL string
	Args     []any
	// CountArgs excludes the window parameters.
	CountArgs []any
}

type builder struct {
	args []any
}

func (b *builder) param(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func identifier(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func likePattern(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(v) + "%"
}

func (b *builder) predicate(p types.Predicate) (string, error) {
	if p.Op == types.OpOr {
		if len(p.Any) == 0 {
			return "", fmt.Errorf("empty or group")
		}
		parts := make([]string, 0, len(p.Any))
		for _, a := range p.Any {
			s, err := b.predicate(a)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	}
	if p.Field == "" {
		return "", fmt.Errorf("predicate without field")
	}
	col := identifier(p.Field)
	switch p.Op {
	case types.OpEq:
		return col + " = " + b.param(p.Value), nil
	case types.OpIn:
		return col + " = ANY(" + b.param(p.Values) + ")", nil
	// Bounds stay text so postgres infers the parameter type from the column. Legacy
	// tables keep dates in text columns.
	case types.OpGte:
		return col + " >= " + b.param(p.Value), nil
	case types.OpLte:
		return col + " <= " + b.param(p.Value), nil
	case types.OpILike:
		return col + "::text ILIKE " + b.param(likePattern(p.Value)), nil
	case types.OpOverlaps:
		return col + " && " + b.param(p.Values), nil
	}
	return "", fmt.Errorf("unsupported operator %q", p.Op)
}

// Build renders a source request as SQL. Values are always passed as parameters.
func Build(req types.SourceRequest) (*Statement, error) {
	if req.Table == "" {
		return nil, fmt.Errorf("no table")
	}
	b := &builder{}
	where := make([]string, 0, len(req.Predicates))
	for _, p := range req.Predicates {
		s, err := b.predicate(p)
		if err != nil {
			return nil, err
		}
		where = append(where, s)
	}

	from := " FROM " + identifier(req.Table)
	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}
	stmt := &Statement{
		CountSQL:  "SELECT count(*)" + from,
		CountArgs: append([]any(nil), b.args...),
	}

	var sql strings.Builder
	sql.WriteString("SELECT *")
	sql.WriteString(from)
	if len(req.Sort) > 0 {
		sql.WriteString(" ORDER BY ")
		for i, s := range req.Sort {
			if i > 0 {
				sql.WriteString(", ")
			}
			sql.WriteString(identifier(s.Field))
			if s.Desc {
				sql.WriteString(" DESC NULLS LAST")
			} else {
				sql.WriteString(" ASC")
			}
		}
	}
	if req.Window.Limit > 0 {
		sql.WriteString(" LIMIT " + b.param(req.Window.Limit))
	}
	if req.Window.Offset > 0 {
		sql.WriteString(" OFFSET " + b.param(req.Window.Offset))
	}
	stmt.SQL = sql.String()
	stmt.Args = b.args
	return stmt, nil
}
