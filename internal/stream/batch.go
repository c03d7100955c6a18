package stream

import (
	"context"

	"github.com/pkg/errors"

	"userstream/internal/domain"
	"userstream/internal/store"
)

// BatchCursor groups a Cursor's output into windows of at most windowSize
// users. The final window may be shorter; an empty table yields zero
// windows, not one empty window.
type BatchCursor struct {
	cur   *Cursor
	size  int
	batch []domain.User
	err   error
	done  bool
}

// Batches opens a streaming cursor and windows it.
func Batches(ctx context.Context, st *store.Store, windowSize int) (*BatchCursor, error) {
	if windowSize < 1 {
		return nil, errors.Errorf("window size must be positive, got %d", windowSize)
	}

	cur, err := Users(ctx, st)
	if err != nil {
		return nil, err
	}
	return &BatchCursor{cur: cur, size: windowSize}, nil
}

// Next pulls the next window from the underlying cursor. Only the current
// window is buffered.
func (b *BatchCursor) Next() bool {
	if b.done {
		return false
	}

	batch := make([]domain.User, 0, b.size)
	for len(batch) < b.size && b.cur.Next() {
		batch = append(batch, b.cur.User())
	}

	if err := b.cur.Err(); err != nil {
		b.err = err
		b.done = true
		return false
	}

	if len(batch) == 0 {
		b.done = true
		return false
	}

	b.batch = batch
	return true
}

// Batch returns the window materialized by the last successful Next.
func (b *BatchCursor) Batch() []domain.User {
	return b.batch
}

// Err returns the error that terminated iteration, if any.
func (b *BatchCursor) Err() error {
	return b.err
}

// Close releases the underlying cursor.
func (b *BatchCursor) Close() error {
	b.done = true
	return b.cur.Close()
}

// FilterAdults applies the age predicate to one window without buffering
// anything beyond it.
func FilterAdults(batch []domain.User) []domain.User {
	adults := make([]domain.User, 0, len(batch))
	for _, u := range batch {
		if u.IsAdult() {
			adults = append(adults, u)
		}
	}
	return adults
}
