package stream

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userstream/internal/config"
	"userstream/internal/domain"
	"userstream/internal/logger"
	"userstream/internal/seed"
	"userstream/internal/store"
)

// ages assigned to the n seeded users, cycling through this list. With
// seven rows this yields {22, 25, 26, 30, 35, 40, 41}: two at or under the
// adult threshold, five over it.
var testAges = []int{22, 25, 26, 30, 35, 40, 41}

func newTestStore(t *testing.T, rows int) *store.Store {
	t.Helper()

	cfg := config.StoreConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	st, err := store.New(cfg, logger.Nop)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, seed.EnsureSchema(ctx, st.DB(), config.DriverSQLite))

	for i := 0; i < rows; i++ {
		_, err := st.DB().Exec(
			"INSERT INTO user_data (user_id, name, email, age) VALUES (?, ?, ?, ?)",
			fmt.Sprintf("user-%02d", i+1),
			fmt.Sprintf("User %02d", i+1),
			fmt.Sprintf("user%02d@example.com", i+1),
			testAges[i%len(testAges)],
		)
		require.NoError(t, err)
	}
	return st
}

func TestStreamExhaustion(t *testing.T) {
	st := newTestStore(t, 7)
	ctx := context.Background()

	cur, err := Users(ctx, st)
	require.NoError(t, err)
	defer cur.Close()

	seen := make(map[string]bool)
	for cur.Next() {
		u := cur.User()
		assert.False(t, seen[u.UserID], "user %s yielded twice", u.UserID)
		seen[u.UserID] = true
	}
	require.NoError(t, cur.Err())
	assert.Len(t, seen, 7)

	// Exhaustion released the dedicated connection.
	assert.Equal(t, 0, st.DB().Stats().InUse)
}

func TestStreamNotRestartable(t *testing.T) {
	st := newTestStore(t, 3)
	ctx := context.Background()

	cur, err := Users(ctx, st)
	require.NoError(t, err)
	for cur.Next() {
	}
	require.NoError(t, cur.Err())
	assert.False(t, cur.Next(), "exhausted cursor must stay exhausted")

	// A second pass requires a new cursor, which re-executes the query.
	again, err := Users(ctx, st)
	require.NoError(t, err)
	defer again.Close()
	var count int
	for again.Next() {
		count++
	}
	require.NoError(t, again.Err())
	assert.Equal(t, 3, count)
}

func TestStreamEmptyTable(t *testing.T) {
	st := newTestStore(t, 0)

	cur, err := Users(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, cur.Next())
	require.NoError(t, cur.Err())
	assert.Equal(t, 0, st.DB().Stats().InUse)
}

func TestStreamAbandonReleasesConnection(t *testing.T) {
	st := newTestStore(t, 7)

	cur, err := Users(context.Background(), st)
	require.NoError(t, err)
	require.True(t, cur.Next())
	require.Equal(t, 1, st.DB().Stats().InUse)

	require.NoError(t, cur.Close())
	assert.Equal(t, 0, st.DB().Stats().InUse)

	// Close is idempotent.
	require.NoError(t, cur.Close())
}

func TestBatchWindowing(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		window    int
		wantSizes []int
	}{
		{"seven rows window four", 7, 4, []int{4, 3}},
		{"seven rows window three", 7, 3, []int{3, 3, 1}},
		{"exact multiple", 6, 3, []int{3, 3}},
		{"window larger than table", 3, 10, []int{3}},
		{"empty table yields zero windows", 0, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t, tt.rows)

			batches, err := Batches(context.Background(), st, tt.window)
			require.NoError(t, err)
			defer batches.Close()

			var sizes []int
			for batches.Next() {
				sizes = append(sizes, len(batches.Batch()))
			}
			require.NoError(t, batches.Err())
			assert.Equal(t, tt.wantSizes, sizes)
			assert.Equal(t, 0, st.DB().Stats().InUse)
		})
	}
}

func TestBatchesRejectsBadWindow(t *testing.T) {
	st := newTestStore(t, 0)

	_, err := Batches(context.Background(), st, 0)
	assert.Error(t, err)
	_, err = Batches(context.Background(), st, -1)
	assert.Error(t, err)
}

func TestFilterAdults(t *testing.T) {
	batch := []domain.User{
		{UserID: "a", Age: 22},
		{UserID: "b", Age: 25},
		{UserID: "c", Age: 26},
		{UserID: "d", Age: 40},
	}

	adults := FilterAdults(batch)
	require.Len(t, adults, 2)
	assert.Equal(t, "c", adults[0].UserID)
	assert.Equal(t, "d", adults[1].UserID)

	assert.Empty(t, FilterAdults(nil))
}

func TestPaginationTermination(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		pageSize  int
		wantSizes []int
	}{
		{"seven rows page three", 7, 3, []int{3, 3, 1}},
		{"exact multiple", 6, 3, []int{3, 3}},
		{"single page", 2, 5, []int{2}},
		{"empty table yields zero pages", 0, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t, tt.rows)

			pages, err := Pages(context.Background(), st, tt.pageSize)
			require.NoError(t, err)

			var sizes []int
			for pages.Next() {
				sizes = append(sizes, len(pages.Page()))
			}
			require.NoError(t, pages.Err())
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestPagesNeverRefetch(t *testing.T) {
	st := newTestStore(t, 7)

	pages, err := Pages(context.Background(), st, 3)
	require.NoError(t, err)

	seen := make(map[string]int)
	for pages.Next() {
		for _, u := range pages.Page() {
			seen[u.UserID]++
		}
	}
	require.NoError(t, pages.Err())
	require.Len(t, seen, 7)
	for id, n := range seen {
		assert.Equal(t, 1, n, "user %s fetched %d times", id, n)
	}
}

func TestPagesRejectsBadSize(t *testing.T) {
	st := newTestStore(t, 0)

	_, err := Pages(context.Background(), st, 0)
	assert.Error(t, err)
}

func TestAgesCursor(t *testing.T) {
	st := newTestStore(t, 3) // ages 22, 25, 26

	ages, err := Ages(context.Background(), st)
	require.NoError(t, err)
	defer ages.Close()

	var total int
	for ages.Next() {
		total += ages.Age()
	}
	require.NoError(t, ages.Err())
	assert.Equal(t, 22+25+26, total)
	assert.Equal(t, 0, st.DB().Stats().InUse)
}

func TestAverageAge(t *testing.T) {
	st := newTestStore(t, 0)
	ctx := context.Background()

	// Empty table: zero, not an error.
	avg, err := AverageAge(ctx, st)
	require.NoError(t, err)
	assert.Zero(t, avg)

	for i, age := range []int{25, 30, 35} {
		_, err := st.DB().Exec(
			"INSERT INTO user_data (user_id, name, email, age) VALUES (?, ?, ?, ?)",
			fmt.Sprintf("avg-%d", i), "Avg", "avg@example.com", age)
		require.NoError(t, err)
	}

	avg, err = AverageAge(ctx, st)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, avg, 1e-9)
}
