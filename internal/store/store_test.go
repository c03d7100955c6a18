package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"userstream/internal/config"
	"userstream/internal/logger"
	"userstream/internal/seed"
)

// newTestStore creates a file-backed SQLite store in a temp dir with the
// user_data schema in place. File-backed rather than :memory: so that every
// pooled connection sees the same database.
func newTestStore(t *testing.T, log logger.Logger) *Store {
	t.Helper()

	cfg := config.StoreConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	st, err := New(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, seed.EnsureSchema(context.Background(), st.DB(), config.DriverSQLite))
	return st
}

// insertTestUsers seeds n deterministic rows: user-01..user-n with ages
// 21..20+n.
func insertTestUsers(t *testing.T, st *Store, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := st.DB().Exec(
			"INSERT INTO user_data (user_id, name, email, age) VALUES (?, ?, ?, ?)",
			fmt.Sprintf("user-%02d", i),
			fmt.Sprintf("User %02d", i),
			fmt.Sprintf("user%02d@example.com", i),
			20+i,
		)
		require.NoError(t, err)
	}
}

func TestNewRejectsNothing(t *testing.T) {
	// sql.Open is lazy; New succeeds and the first query surfaces problems.
	st := newTestStore(t, logger.Nop)
	count, err := st.CountUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestConnOwnership(t *testing.T) {
	st := newTestStore(t, logger.Nop)
	ctx := context.Background()

	conn, err := st.Conn(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.DB().Stats().InUse)

	var one int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT 1").Scan(&one))
	require.Equal(t, 1, one)

	require.NoError(t, conn.Close())
	require.Equal(t, 0, st.DB().Stats().InUse)

	// A second close must not panic; database/sql reports ErrConnDone.
	require.ErrorIs(t, conn.Close(), sql.ErrConnDone)
}

func TestCacheIsSharedAcrossCallers(t *testing.T) {
	st := newTestStore(t, logger.Nop)
	insertTestUsers(t, st, 3)
	ctx := context.Background()

	first, err := st.FetchCached(ctx, "SELECT user_id FROM user_data")
	require.NoError(t, err)

	second, err := st.FetchCached(ctx, "SELECT user_id FROM user_data")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, st.Cache().Len())
}
