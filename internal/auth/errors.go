package auth

import (
	"errors"

	"github.com/passgate/passgate/internal/errorz"
)

var (
	// ErrValidation indicates the provided credentials are empty or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail indicates a user with the same email address already exists.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrStoreUnavailable indicates the user store could not be reached or failed.
	ErrStoreUnavailable = errorz.ErrUnavailable
	// ErrNotFound indicates no user exists with the provided email address.
	ErrNotFound = errorz.ErrNotFound
	// ErrPasswordMismatch indicates the password does not match the stored verifier.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrMalformedCredential indicates a stored verifier could not be parsed.
	ErrMalformedCredential = errors.New("malformed credential format")
)
