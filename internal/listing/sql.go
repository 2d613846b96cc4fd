package listing

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nainya/simplesearch/pkg/query"
)

// selectStatement renders the paged SELECT for a collection
func selectStatement(collection string, pred query.Node, page Page, d query.Dialect) (string, []any, error) {
	if strings.Contains(collection, query.PathSeparator) {
		return "", nil, fmt.Errorf("%w: %q", query.ErrInvalidField, collection)
	}
	table, err := query.Column(collection)
	if err != nil {
		return "", nil, err
	}
	where, args, err := query.ToSQL(pred, d)
	if err != nil {
		return "", nil, err
	}

	page = page.Normalize()
	args = append(args, page.Limit)
	limit := d.Placeholder(len(args))
	args = append(args, page.Offset)
	offset := d.Placeholder(len(args))

	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT %s OFFSET %s", table, where, limit, offset)
	return stmt, args, nil
}

// SQLStore runs predicates against tables through database/sql
type SQLStore struct {
	db      *sql.DB
	dialect query.Dialect
}

// NewSQLStore wraps an open database
func NewSQLStore(db *sql.DB, d query.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

// OpenSQLite opens an SQLite database with the pure-Go driver
func OpenSQLite(dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return NewSQLStore(db, query.SQLite), nil
}

// DB returns the underlying database
func (s *SQLStore) DB() *sql.DB { return s.db }

// Close closes the database
func (s *SQLStore) Close() error { return s.db.Close() }

// Exec runs a statement such as a CREATE TABLE
func (s *SQLStore) Exec(ctx context.Context, stmt string, args ...any) error {
	_, err := s.db.ExecContext(ctx, stmt, args...)
	return err
}

// Insert writes one record; keys are column names
func (s *SQLStore) Insert(ctx context.Context, collection string, rec query.Record) error {
	table, err := query.Column(collection)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		col, err := query.Column(k)
		if err != nil {
			return err
		}
		cols[i] = col
		args[i] = s.dialect.Arg(rec[k])
		marks[i] = s.dialect.Placeholder(i + 1)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	_, err = s.db.ExecContext(ctx, stmt, args...)
	return err
}

// Find selects the matching rows of a table
func (s *SQLStore) Find(ctx context.Context, collection string, pred query.Node, page Page) ([]query.Record, error) {
	stmt, args, err := selectStatement(collection, pred, page, s.dialect)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]query.Record, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(query.Record, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = vals[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
