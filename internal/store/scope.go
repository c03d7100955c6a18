package store

import (
	"context"
	"database/sql"
)

// WithConn acquires one connection, invokes fn with it, and releases the
// connection on every exit path. Acquisition errors are returned without
// invoking fn; fn's error is returned to the caller unchanged after the
// release. No retry or caching happens here.
func (s *Store) WithConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(conn)
}

// Transact composes WithConn and WithinTx: one connection, one transaction,
// committed or rolled back by the time Transact returns.
func (s *Store) Transact(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.WithConn(ctx, func(conn *sql.Conn) error {
		return s.WithinTx(ctx, conn, fn)
	})
}
