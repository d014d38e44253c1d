package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type User struct {
	ID           uuid.UUID `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateUser inserts a new user and returns it with id and created_at set.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		u.ID, u.Username, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UserByUsername returns the user with the given username, including the
// password hash for credential checks. ErrNotFound when absent.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password, created_at FROM users
		WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// UserExists reports whether a user already claims the username or the
// email, so signup can tell the caller which one collided.
func (s *Store) UserExists(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM users WHERE username = $1),
			EXISTS (SELECT 1 FROM users WHERE email = $2)`,
		username, email,
	).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return false, false, fmt.Errorf("check user exists: %w", err)
	}
	return usernameTaken, emailTaken, nil
}
