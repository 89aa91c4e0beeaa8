// Package pg runs compiled catalog queries directly against postgres.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/matst80/slask-catalog/pkg/types"
)

type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Source struct {
	db Querier
}

func New(db Querier) *Source {
	return &Source{db: db}
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	log.Info("connected to postgres")
	return pool, nil
}

func (s *Source) Query(ctx context.Context, req types.SourceRequest) (*types.SourceResponse, error) {
	stmt, err := Build(req)
	if err != nil {
		return nil, fmt.Errorf("build query for %s: %w", req.Table, types.ErrSourceUnavailable)
	}

	rows, err := s.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, classify(ctx, req.Table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, classify(ctx, req.Table, err)
	}

	ret := &types.SourceResponse{Rows: make([]types.Row, 0, len(maps)), Total: -1}
	for _, m := range maps {
		ret.Rows = append(ret.Rows, types.Row(m))
	}
	if req.Count {
		var total int64
		if err := s.db.QueryRow(ctx, stmt.CountSQL, stmt.CountArgs...).Scan(&total); err != nil {
			log.WithField("table", req.Table).Warnf("count failed: %v", err)
		} else {
			ret.Total = int(total)
		}
	}
	return ret, nil
}

// classify maps driver failures onto the retrieval error taxonomy.
func classify(ctx context.Context, table string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501":
			return fmt.Errorf("%s: %s: %w", table, pgErr.Message, types.ErrPermissionDenied)
		case "42P01", "42703", "42883":
			return fmt.Errorf("%s: schema mismatch %s: %w", table, pgErr.Message, types.ErrSourceUnavailable)
		}
		return fmt.Errorf("%s: sqlstate %s: %w", table, pgErr.Code, types.ErrSourceUnavailable)
	}
	return fmt.Errorf("%s: %v: %w", table, err, types.ErrSourceUnavailable)
}
