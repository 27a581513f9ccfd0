package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/passgate/passgate/internal/email"
	"github.com/passgate/passgate/internal/errorz"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// Credentials are the email address and password a user registers and
// logs in with.
type Credentials struct {
	Email    email.Address
	Password Password
}

// credentialsInput holds the raw, trimmed user input.
type credentialsInput struct {
	Email    string `validate:"required,max=254"`
	Password string `validate:"required,max=512"`
}

// ParseCredentials trims and validates raw user input. Any returned error
// wraps both ErrValidation and an errorz.InvalidInput with one errorz.Keyed
// error per invalid field.
func ParseCredentials(rawEmail, rawPassword string) (Credentials, error) {
	in := credentialsInput{
		Email:    strings.TrimSpace(rawEmail),
		Password: strings.TrimSpace(rawPassword),
	}

	var invalid errorz.InvalidInput

	err := validate.Struct(in)
	if err != nil {
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return Credentials{}, err
		}

		for _, fe := range vErrs {
			invalid = append(invalid, errorz.Keyed{
				Key: strings.ToLower(fe.Field()),
				Err: fmt.Errorf("failed %q check", fe.Tag()),
			})
		}

		return Credentials{}, fmt.Errorf("%w: %w", ErrValidation, invalid)
	}

	addr, err := email.ParseAddress(in.Email)
	if err != nil {
		invalid = append(invalid, errorz.Keyed{Key: "email", Err: err})
	}

	pwd, err := ParsePassword(in.Password)
	if err != nil {
		invalid = append(invalid, errorz.Keyed{Key: "password", Err: err})
	}

	if len(invalid) > 0 {
		return Credentials{}, fmt.Errorf("%w: %w", ErrValidation, invalid)
	}

	return Credentials{
		Email:    addr,
		Password: pwd,
	}, nil
}

// Validate reports an error wrapping ErrValidation if c was not created
// by ParseCredentials.
func (c Credentials) Validate() error {
	var invalid errorz.InvalidInput
	if c.Email == "" {
		invalid = append(invalid, errorz.Keyed{Key: "email", Err: email.ErrInvalidEmail})
	}

	if c.Password.IsZero() {
		invalid = append(invalid, errorz.Keyed{Key: "password", Err: ErrInvalidPassword})
	}

	if len(invalid) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, invalid)
	}

	return nil
}
