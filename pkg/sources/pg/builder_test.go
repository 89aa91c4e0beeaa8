package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matst80/slask-catalog/pkg/types"
)

func TestBuildSelect(t *testing.T) {
	stmt, err := Build(types.SourceRequest{
		Table: "public.events",
		Predicates: []types.Predicate{
			{Field: "department", Op: types.OpIn, Values: []string{"HR", "Finance"}},
			{Field: "starts_at", Op: types.OpGte, Value: "2026-10-19T00:00:00Z"},
			{Op: types.OpOr, Any: []types.Predicate{
				{Field: "title", Op: types.OpILike, Value: "50%"},
				{Field: "description", Op: types.OpILike, Value: "50%"},
			}},
			{Field: "status", Op: types.OpEq, Value: "published"},
		},
		Sort:   []types.SortSpec{{Field: "starts_at"}, {Field: "title", Desc: true}},
		Window: types.Window{Offset: 18, Limit: 9},
		Count:  true,
	})
	require.NoError(t, err)

	where := ` FROM "public"."events" WHERE "department" = ANY($1) AND "starts_at" >= $2 AND ("title"::text ILIKE $3 OR "description"::text ILIKE $4) AND "status" = $5`
	assert.Equal(t, `SELECT *`+where+` ORDER BY "starts_at" ASC, "title" DESC NULLS LAST LIMIT $6 OFFSET $7`, stmt.SQL)
	assert.Equal(t, `SELECT count(*)`+where, stmt.CountSQL)
	assert.Equal(t, []any{
		[]string{"HR", "Finance"},
		"2026-10-19T00:00:00Z",
		`%50\%%`,
		`%50\%%`,
		"published",
		9,
		18,
	}, stmt.Args)
	assert.Len(t, stmt.CountArgs, 5)
}

func TestBuildNumericBoundsAndOverlap(t *testing.T) {
	stmt, err := Build(types.SourceRequest{
		Table: "courses",
		Predicates: []types.Predicate{
			{Field: "duration_minutes", Op: types.OpLte, Value: "90"},
			{Field: "tags", Op: types.OpOverlaps, Values: []string{"excel"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "courses" WHERE "duration_minutes" <= $1 AND "tags" && $2`, stmt.SQL)
	assert.Equal(t, []any{"90", []string{"excel"}}, stmt.Args)
}

func TestBuildLegacyDateBoundsStayText(t *testing.T) {
	stmt, err := Build(types.SourceRequest{
		Table: "event_listings",
		Predicates: []types.Predicate{
			{Field: "event_date", Op: types.OpGte, Value: "2026-10-19"},
			{Field: "event_date", Op: types.OpLte, Value: "2026-11-30"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "event_listings" WHERE "event_date" >= $1 AND "event_date" <= $2`, stmt.SQL)
	assert.Equal(t, []any{"2026-10-19", "2026-11-30"}, stmt.Args)
	for _, arg := range stmt.Args {
		assert.IsType(t, "", arg)
	}
}

func TestBuildRejectsUnknownOperator(t *testing.T) {
	_, err := Build(types.SourceRequest{Table: "courses", Predicates: []types.Predicate{{Field: "x", Op: "near"}}})
	assert.Error(t, err)
	_, err = Build(types.SourceRequest{})
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, classify(ctx, "events", &pgconn.PgError{Code: "42501"}), types.ErrPermissionDenied)
	assert.ErrorIs(t, classify(ctx, "events", &pgconn.PgError{Code: "42P01"}), types.ErrSourceUnavailable)
	assert.ErrorIs(t, classify(ctx, "events", errors.New("dial tcp: refused")), types.ErrSourceUnavailable)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, classify(cancelled, "events", errors.New("conn closed")), context.Canceled)
}
