package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/passgate/passgate/internal/krypto"
)

// Service is the type that provides the main rules for
// authentication.
type Service struct {
	store Store

	// comparisonHash is used to compare passwords when no user was found.
	comparisonHash string
}

func NewService(s Store) (*Service, error) {
	b, err := krypto.RandomBytes(32)
	if err != nil {
		return nil, err
	}

	hash, err := krypto.HashArgon2(b)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		store:          s,
		comparisonHash: hash.String(),
	}

	return svc, nil
}

// RegisterUser creates a new user with the provided credentials. It does
// exactly one insert in the store, or none when c is invalid.
func (s *Service) RegisterUser(ctx context.Context, c Credentials) (User, error) {
	err := c.Validate()
	if err != nil {
		return User{}, err
	}

	pwdHash, err := c.Password.Hash()
	if err != nil {
		return User{}, err
	}

	user := User{
		Email:        c.Email,
		PasswordHash: pwdHash,
	}

	err = s.store.InsertUser(ctx, &user)
	if err != nil {
		return User{}, storeErr(err)
	}

	return user, nil
}

// Authenticate checks if the provided credentials are valid and returns
// the matching user. It does exactly one read from the store.
//
// The returned error wraps one of ErrValidation, ErrNotFound,
// ErrPasswordMismatch, ErrMalformedCredential or ErrStoreUnavailable.
func (s *Service) Authenticate(ctx context.Context, c Credentials) (User, error) {
	err := c.Validate()
	if err != nil {
		return User{}, err
	}

	user, err := s.store.FindUserByEmail(ctx, c.Email)
	if errors.Is(err, ErrNotFound) {
		// Even if no user is found we compare to a hash to prevent timing differences
		// that could result in user enumeration attacks.
		_, _ = c.Password.Match(s.comparisonHash)
		return User{}, ErrNotFound
	}

	if err != nil {
		return User{}, storeErr(err)
	}

	ok, err := c.Password.Match(user.PasswordHash)
	if err != nil {
		return User{}, fmt.Errorf("user %d: %w", user.ID, err)
	}

	if !ok {
		return User{}, ErrPasswordMismatch
	}

	return user, nil
}

// storeErr makes sure unexpected store errors are classified as
// ErrStoreUnavailable.
func storeErr(err error) error {
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
