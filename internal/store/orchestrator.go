package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"userstream/internal/domain"
)

// Operation is one independent read executed by FetchConcurrently. Each
// invocation manages its own connection scope; operations never share a
// connection.
type Operation func(ctx context.Context) ([]domain.User, error)

// FetchConcurrently runs every operation on its own goroutine and returns
// after all of them have completed, a join rather than a race. Results are
// ordered by input position, not completion order. The first error observed
// fails the aggregate, but siblings are not canceled on its behalf; callers
// wanting that cancel the parent context themselves.
func (s *Store) FetchConcurrently(ctx context.Context, ops ...Operation) ([][]domain.User, error) {
	results := make([][]domain.User, len(ops))

	var g errgroup.Group
	for i, op := range ops {
		i, op := i, op
		g.Go(func() error {
			users, err := op(ctx)
			if err != nil {
				return err
			}
			results[i] = users
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
