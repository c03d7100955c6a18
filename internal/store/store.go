package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	// Registered drivers. The sqlite driver also backs the test suites.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"userstream/internal/config"
	"userstream/internal/logger"
)

// Store owns the database handle, the shared query cache, and the logger
// every layer reports through.
type Store struct {
	db    *sql.DB
	log   logger.Logger
	cache *QueryCache
}

// New opens the configured store and applies the pool limits.
func New(cfg config.StoreConfig, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime))

	return &Store{
		db:    db,
		log:   log,
		cache: NewQueryCache(log),
	}, nil
}

// Conn acquires one dedicated connection from the pool. The caller owns it
// and must close it exactly once; prefer WithConn unless the connection has
// to outlive the call (streaming cursors do).
func (s *Store) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquire connection")
	}
	return conn, nil
}

// DB exposes the raw handle for seeding and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Cache returns the process-wide query result cache owned by this store.
func (s *Store) Cache() *QueryCache {
	return s.cache
}

// Logger returns the store's logger.
func (s *Store) Logger() logger.Logger {
	return s.log
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
