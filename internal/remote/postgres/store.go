// Package postgres implements remote.Store on top of database/sql with the
// pgx driver. SQL is generated from remote.ListQuery after every resource
// and column has been checked against remote.Schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/dbx"
	"github.com/dmitrijs2005/opsdash/internal/remote"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store answers remote queries against a Postgres connection.
type Store struct {
	db dbx.DBTX
}

func NewStore(db dbx.DBTX) *Store {
	return &Store{db: db}
}

// pingTimeout bounds the reachability check in Open.
const pingTimeout = 8 * time.Second

// Open connects to dsn and fails fast if the backend is unreachable.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping remote store: %w", err)
	}
	return db, nil
}

func (s *Store) Select(ctx context.Context, q remote.ListQuery) ([]remote.Record, error) {
	query, args, err := buildSelect(q)
	if err != nil {
		return nil, common.NewQueryError("select", q.Resource, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewQueryError("select", q.Resource, fmt.Errorf("db error: %w", err))
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, common.NewQueryError("select", q.Resource, err)
	}
	return records, nil
}

func (s *Store) Count(ctx context.Context, q remote.ListQuery) (int, error) {
	query, args, err := buildCount(q)
	if err != nil {
		return 0, common.NewQueryError("count", q.Resource, err)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, common.NewQueryError("count", q.Resource, fmt.Errorf("db error: %w", err))
	}
	return int(n), nil
}

func (s *Store) Update(ctx context.Context, resource string, values map[string]any, filters ...remote.Filter) (int64, error) {
	query, args, err := buildUpdate(resource, values, filters)
	if err != nil {
		return 0, common.NewQueryError("update", resource, err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, common.NewQueryError("update", resource, fmt.Errorf("db error: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.NewQueryError("update", resource, fmt.Errorf("db error: %w", err))
	}
	return n, nil
}

func (s *Store) Call(ctx context.Context, procedure string, args map[string]any) ([]remote.Record, error) {
	query, qargs, err := buildCall(procedure, args)
	if err != nil {
		return nil, common.NewQueryError("call", procedure, err)
	}
	rows, err := s.db.QueryContext(ctx, query, qargs...)
	if err != nil {
		return nil, common.NewQueryError("call", procedure, fmt.Errorf("db error: %w", err))
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, common.NewQueryError("call", procedure, err)
	}
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]remote.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	result := make([]remote.Record, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make(remote.Record, len(cols))
		for i, c := range cols {
			rec[c] = normalize(values[i])
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return result, nil
}

// normalize turns driver byte slices into strings so Record getters see one
// representation for text.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
