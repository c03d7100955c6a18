package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"userstream/internal/domain"
)

// Column list shared by every user_data read in the module.
const userColumns = "user_id, name, email, age"

// FetchAllUsers materializes the whole user_data table. Prefer the stream
// package for unbounded result sets.
func (s *Store) FetchAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.fetchUsers(ctx, "SELECT "+userColumns+" FROM user_data")
}

// FetchUsersOlderThan returns every user strictly older than age.
func (s *Store) FetchUsersOlderThan(ctx context.Context, age int) ([]domain.User, error) {
	return s.fetchUsers(ctx, "SELECT "+userColumns+" FROM user_data WHERE age > ?", age)
}

// CountUsers reports the number of rows in user_data.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.WithConn(ctx, func(conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_data")
		return row.Scan(&count)
	})
	if err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return count, nil
}

func (s *Store) fetchUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	var users []domain.User
	err := s.WithConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return errors.Wrapf(err, "query %q", query)
		}
		defer rows.Close()

		users, err = ScanUsers(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ScanUsers drains rows whose columns match userColumns.
func ScanUsers(rows *sql.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email, &u.Age); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate users")
	}
	return users, nil
}
