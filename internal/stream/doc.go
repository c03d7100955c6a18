// Package stream provides lazy, forward-only iteration over the user_data
// table.
//
// Every cursor owns a dedicated connection for its lifetime and releases it
// when iteration is exhausted, fails, or is abandoned via Close. Cursors are
// not restartable; a second pass requires a new cursor, which re-executes
// the query. At most one row (or one window, for batches) is materialized
// at a time.
package stream
