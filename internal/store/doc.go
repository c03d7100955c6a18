// Package store implements the resilient access layer over the relational
// store.
//
// The layering is deliberate and composes from the inside out:
//
//   - WithConn is the innermost layer. It scopes one pooled connection to a
//     single operation and guarantees release on every exit path.
//   - WithinTx wraps an operation on that same connection in a transaction,
//     committing on success and rolling back on any failure.
//   - WithRetry re-runs a failing operation a bounded number of times with a
//     fixed delay between attempts.
//   - QueryCache memoizes materialized query results keyed by a fingerprint
//     of the query text and its parameters.
//   - FetchConcurrently fans out independent reads, each on its own
//     connection scope, and joins all results in input order.
//
// None of the layers swallow errors: each performs its own cleanup and
// returns the operation's original error to the caller.
package store
