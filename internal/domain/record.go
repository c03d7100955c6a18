package domain

// Record is one row of an arbitrary query result, keyed by column name.
// Values are the scalars the driver produced (string, int64, float64, bool,
// or nil). A Record is immutable once yielded; callers must not mutate
// records handed out by the cache, which shares them across callers.
type Record map[string]any
