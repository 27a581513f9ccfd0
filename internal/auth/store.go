package auth

import (
	"context"

	"github.com/passgate/passgate/internal/email"
)

// Store persists users.
//
// Email addresses are unique, the store enforces this. Failures to reach
// the underlying storage are reported as errors wrapping ErrStoreUnavailable.
type Store interface {
	// InsertUser inserts u and sets its ID. It returns ErrDuplicateEmail
	// if a user with the same email address already exists.
	InsertUser(ctx context.Context, u *User) error
	// FindUserByEmail returns the user with the given address. It returns
	// ErrNotFound if no such user exists.
	FindUserByEmail(ctx context.Context, addr email.Address) (User, error)
}
