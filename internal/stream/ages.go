package stream

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"userstream/internal/store"
)

// AgeCursor streams the age column one value at a time, for aggregations
// that must not materialize the table.
type AgeCursor struct {
	conn   *sql.Conn
	rows   *sql.Rows
	cur    int
	err    error
	closed bool
}

// Ages opens a streaming cursor over the age column on its own connection.
func Ages(ctx context.Context, st *store.Store) (*AgeCursor, error) {
	conn, err := st.Conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, "SELECT age FROM user_data")
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "stream ages")
	}

	return &AgeCursor{conn: conn, rows: rows}, nil
}

// Next advances to the next age value.
func (a *AgeCursor) Next() bool {
	if a.closed {
		return false
	}

	if !a.rows.Next() {
		a.err = a.rows.Err()
		a.Close()
		return false
	}

	if err := a.rows.Scan(&a.cur); err != nil {
		a.err = errors.Wrap(err, "scan age")
		a.Close()
		return false
	}
	return true
}

// Age returns the value materialized by the last successful Next.
func (a *AgeCursor) Age() int {
	return a.cur
}

// Err returns the error that terminated iteration, if any.
func (a *AgeCursor) Err() error {
	return a.err
}

// Close releases the cursor's row set and connection. Idempotent.
func (a *AgeCursor) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	rowsErr := a.rows.Close()
	connErr := a.conn.Close()
	if rowsErr != nil {
		return rowsErr
	}
	return connErr
}

// AverageAge computes the mean age with a running sum over the age stream.
// An empty table yields 0.
func AverageAge(ctx context.Context, st *store.Store) (float64, error) {
	ages, err := Ages(ctx, st)
	if err != nil {
		return 0, err
	}
	defer ages.Close()

	var total, count int
	for ages.Next() {
		total += ages.Age()
		count++
	}
	if err := ages.Err(); err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, nil
	}
	return float64(total) / float64(count), nil
}
