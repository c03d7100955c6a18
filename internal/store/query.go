package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"userstream/internal/domain"
)

// Fetch runs a read query inside its own connection scope and materializes
// every row as a Record. The query text is logged before execution.
func (s *Store) Fetch(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	s.log.Printf("executing query: %s", query)

	var records []domain.Record
	err := s.WithConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return errors.Wrapf(err, "query %q", query)
		}
		defer rows.Close()

		records, err = collectRecords(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FetchCached is Fetch memoized through the store's query cache. The first
// call for a given query and parameter set hits the store; subsequent calls
// return the stored records without a round trip.
func (s *Store) FetchCached(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	return s.cache.Fetch(ctx, query, args, func(ctx context.Context) ([]domain.Record, error) {
		return s.Fetch(ctx, query, args...)
	})
}

// collectRecords drains rows into Records, normalizing driver byte slices
// to strings.
func collectRecords(rows *sql.Rows) ([]domain.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "read columns")
	}

	var records []domain.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}

		record := make(domain.Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}
	return records, nil
}
