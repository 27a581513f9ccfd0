package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/email"
	"github.com/passgate/passgate/internal/errorz"
)

const (
	insertUserQuery      = `INSERT INTO users (email, password_hash) VALUES (?, ?)`
	findUserByEmailQuery = `SELECT id, email, password_hash FROM users WHERE email = ?`
)

var _ auth.Store = (*Store)(nil)

// InsertUser inserts u and sets its ID.
func (s *Store) InsertUser(ctx context.Context, u *auth.User) (err error) {
	c, err := conn(ctx, s.writeDB)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := c.Close(); cErr != nil {
			err = errors.Join(err, closeErr(cErr))
		}
	}()

	res, err := c.ExecContext(ctx, insertUserQuery, string(u.Email), u.PasswordHash)
	if err != nil {
		err = errorz.MapDBErr(err)
		if errors.Is(err, errorz.ErrConstraintViolated) {
			return fmt.Errorf("%w: %w", auth.ErrDuplicateEmail, err)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", errorz.MapDBErr(err))
	}

	u.ID = int(id)
	return nil
}

// FindUserByEmail finds the user with the exact email address.
func (s *Store) FindUserByEmail(ctx context.Context, addr email.Address) (u auth.User, err error) {
	c, err := conn(ctx, s.readDB)
	if err != nil {
		return auth.User{}, err
	}
	defer func() {
		if cErr := c.Close(); cErr != nil {
			err = errors.Join(err, closeErr(cErr))
		}
	}()

	err = c.QueryRowContext(ctx, findUserByEmailQuery, string(addr)).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		err = errorz.MapDBErr(err)
		if errors.Is(err, errorz.ErrNotFound) {
			return auth.User{}, auth.ErrNotFound
		}
		return auth.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	return u, nil
}

func closeErr(err error) error {
	return fmt.Errorf("failed to release connection: %w", errorz.MapDBErr(err))
}
