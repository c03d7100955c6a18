package stream

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"userstream/internal/domain"
	"userstream/internal/store"
)

// Pager fetches successive fixed-size pages on demand with offset/limit
// semantics. Each page is an independent store round trip; no page is ever
// re-fetched. Iteration stops at the first empty page, which cannot be told
// apart from a page boundary that happens to be empty in a sparse store.
type Pager struct {
	ctx  context.Context
	st   *store.Store
	size int
	page int
	cur  []domain.User
	err  error
	done bool
}

// Pages returns a lazy paginator over user_data.
func Pages(ctx context.Context, st *store.Store, pageSize int) (*Pager, error) {
	if pageSize < 1 {
		return nil, errors.Errorf("page size must be positive, got %d", pageSize)
	}
	return &Pager{ctx: ctx, st: st, size: pageSize}, nil
}

// Next fetches the next page. It returns false on error or at the first
// empty page.
func (p *Pager) Next() bool {
	if p.done {
		return false
	}

	offset := p.page * p.size
	users, err := p.fetch(offset)
	if err != nil {
		p.err = err
		p.done = true
		return false
	}
	if len(users) == 0 {
		p.done = true
		return false
	}

	p.cur = users
	p.page++
	return true
}

// Page returns the page fetched by the last successful Next.
func (p *Pager) Page() []domain.User {
	return p.cur
}

// Err returns the error that terminated pagination, if any.
func (p *Pager) Err() error {
	return p.err
}

func (p *Pager) fetch(offset int) ([]domain.User, error) {
	var users []domain.User
	err := p.st.WithConn(p.ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(p.ctx, selectUsers+" LIMIT ? OFFSET ?", p.size, offset)
		if err != nil {
			return errors.Wrapf(err, "fetch page at offset %d", offset)
		}
		defer rows.Close()

		users, err = store.ScanUsers(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
