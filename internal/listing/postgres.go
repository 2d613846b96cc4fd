package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nainya/simplesearch/pkg/query"
)

// PgStore runs predicates against Postgres tables through a pgx pool
type PgStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool and verifies it with a ping
func OpenPostgres(ctx context.Context, dsn string) (*PgStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PgStore{pool: pool}, nil
}

// Close closes the pool
func (s *PgStore) Close() {
	s.pool.Close()
}

// Find selects the matching rows of a table
func (s *PgStore) Find(ctx context.Context, collection string, pred query.Node, page Page) ([]query.Record, error) {
	stmt, args, err := selectStatement(collection, pred, page, query.Postgres)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := make([]query.Record, 0)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(query.Record, len(fields))
		for i, fd := range fields {
			rec[fd.Name] = vals[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
