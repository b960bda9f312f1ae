package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/shopfront/internal/identity"
)

// UserStore persists accounts on PostgreSQL.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts the account; a duplicate email surfaces as
// ErrEmailExists.
func (s *UserStore) CreateUser(ctx context.Context, u identity.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = "id, email, password_hash, name, role, created_at"

func (s *UserStore) scanUser(row *sql.Row) (identity.User, error) {
	var u identity.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.User{}, ErrNotFound
	}
	if err != nil {
		return identity.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetUser(ctx context.Context, id string) (identity.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (identity.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func (s *UserStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
