// Package seed bootstraps the store: it makes the configured database
// exist, creates the user_data schema if absent, and idempotently loads
// rows from a CSV source. The access layer assumes a populated store; this
// package is the collaborator that provides one.
package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	// Seeding opens its own handles, before any Store exists.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"userstream/internal/config"
	"userstream/internal/logger"
)

// Ensure creates the database and schema, then loads the configured CSV if
// one is set. Already-populated tables are left untouched.
func Ensure(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if log == nil {
		log = logger.Nop
	}

	if err := EnsureDatabase(ctx, cfg.Store, log); err != nil {
		return err
	}

	db, err := sql.Open(cfg.Store.Driver, cfg.Store.DSN())
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()

	if err := EnsureSchema(ctx, db, cfg.Store.Driver); err != nil {
		return err
	}

	if cfg.Seed.CSVPath != "" {
		inserted, err := LoadCSV(ctx, db, cfg.Store.Driver, cfg.Seed.CSVPath, log)
		if err != nil {
			return err
		}
		if inserted > 0 {
			log.Printf("seeded %d rows from %s", inserted, cfg.Seed.CSVPath)
		}
	}

	return nil
}

// EnsureDatabase creates the target database if it does not exist. SQLite
// databases are files created on first open, so only MySQL does work here.
func EnsureDatabase(ctx context.Context, cfg config.StoreConfig, log logger.Logger) error {
	if cfg.Driver != config.DriverMySQL {
		return nil
	}

	server, err := sql.Open(cfg.Driver, cfg.ServerDSN())
	if err != nil {
		return errors.Wrap(err, "open server connection")
	}
	defer server.Close()

	_, err = server.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+cfg.Database)
	if err != nil {
		return errors.Wrapf(err, "create database %s", cfg.Database)
	}
	log.Debugf("database %s present", cfg.Database)
	return nil
}

// EnsureSchema creates the user_data table if absent.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	var schema string
	switch driver {
	case config.DriverMySQL:
		schema = `
		CREATE TABLE IF NOT EXISTS user_data (
			user_id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			age INT NOT NULL
		)`
	default:
		schema = `
		CREATE TABLE IF NOT EXISTS user_data (
			user_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			age INTEGER NOT NULL
		)`
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "create user_data table")
	}
	return nil
}

// LoadCSV inserts rows from a delimited file with a header row naming
// columns. Rows violating the user_id uniqueness constraint are skipped,
// not errored; a user_id is generated when the file has no such column.
// A table that already holds rows is skipped entirely. Returns the number
// of rows inserted.
func LoadCSV(ctx context.Context, db *sql.DB, driver, path string, log logger.Logger) (int, error) {
	if log == nil {
		log = logger.Nop
	}

	var existing int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_data").Scan(&existing); err != nil {
		return 0, errors.Wrap(err, "count existing rows")
	}
	if existing > 0 {
		log.Printf("user_data already holds %d rows; skipping seed", existing)
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open seed file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, errors.Wrap(err, "read header row")
	}

	cols, err := mapColumns(header)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStatement(driver))
	if err != nil {
		return 0, errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	inserted := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrapf(err, "read row at line %d", line)
		}

		id := uuid.NewString()
		if cols.userID >= 0 {
			id = row[cols.userID]
		}
		age, err := strconv.Atoi(strings.TrimSpace(row[cols.age]))
		if err != nil {
			return 0, errors.Wrapf(err, "parse age at line %d", line)
		}

		res, err := stmt.ExecContext(ctx, id, row[cols.name], row[cols.email], age)
		if err != nil {
			return 0, errors.Wrapf(err, "insert row at line %d", line)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		} else {
			log.Debugf("duplicate user_id %s skipped", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit seed transaction")
	}
	return inserted, nil
}

// columnIndexes locates the user_data columns in a CSV header.
type columnIndexes struct {
	userID int // -1 when the file carries no id column
	name   int
	email  int
	age    int
}

func mapColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{userID: -1, name: -1, email: -1, age: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "user_id", "id":
			cols.userID = i
		case "name":
			cols.name = i
		case "email":
			cols.email = i
		case "age":
			cols.age = i
		}
	}
	if cols.name < 0 || cols.email < 0 || cols.age < 0 {
		return cols, errors.Errorf("header %v is missing one of name, email, age", header)
	}
	return cols, nil
}

func insertStatement(driver string) string {
	if driver == config.DriverMySQL {
		return "INSERT IGNORE INTO user_data (user_id, name, email, age) VALUES (?, ?, ?, ?)"
	}
	return "INSERT OR IGNORE INTO user_data (user_id, name, email, age) VALUES (?, ?, ?, ?)"
}
