package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// WithinTx begins a transaction on conn, invokes fn, and settles the
// transaction by outcome: commit when fn returns nil, rollback otherwise.
// The rollback path returns fn's original error, not a wrapped one, so
// sentinel comparisons at the call site keep working. Exactly one of
// commit or rollback happens.
func (s *Store) WithinTx(ctx context.Context, conn *sql.Conn, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Printf("rollback failed: %v", rbErr)
		}
		s.log.Printf("rolled back: %v", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		s.log.Printf("commit failed: %v", err)
		return errors.Wrap(err, "commit transaction")
	}

	s.log.Printf("committed")
	return nil
}
