package stream

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"userstream/internal/domain"
	"userstream/internal/store"
)

const selectUsers = "SELECT user_id, name, email, age FROM user_data"

// Cursor streams user_data rows one at a time in store-determined order.
//
//	cur, err := stream.Users(ctx, st)
//	if err != nil { ... }
//	defer cur.Close()
//	for cur.Next() {
//		u := cur.User()
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor struct {
	conn   *sql.Conn
	rows   *sql.Rows
	cur    domain.User
	err    error
	closed bool
}

// Users opens a streaming cursor over the whole user_data table on its own
// dedicated connection.
func Users(ctx context.Context, st *store.Store) (*Cursor, error) {
	conn, err := st.Conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, selectUsers)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "stream users")
	}

	return &Cursor{conn: conn, rows: rows}, nil
}

// Next advances to the next row, materializing exactly one user. It returns
// false at exhaustion or on error; either way the underlying connection has
// been released by the time it returns false.
func (c *Cursor) Next() bool {
	if c.closed {
		return false
	}

	if !c.rows.Next() {
		c.err = c.rows.Err()
		c.Close()
		return false
	}

	var u domain.User
	if err := c.rows.Scan(&u.UserID, &u.Name, &u.Email, &u.Age); err != nil {
		c.err = errors.Wrap(err, "scan user")
		c.Close()
		return false
	}

	c.cur = u
	return true
}

// User returns the row materialized by the last successful Next.
func (c *Cursor) User() domain.User {
	return c.cur
}

// Err returns the error that terminated iteration, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the cursor's row set and connection. It is idempotent and
// safe to call after normal exhaustion.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	rowsErr := c.rows.Close()
	connErr := c.conn.Close()
	if rowsErr != nil {
		return rowsErr
	}
	return connErr
}
