package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/passgate/passgate/internal/krypto"
)

const (
	// We put a generous upper cap on password length, so people can use
	// passphrases but we don't allow MBs of data as a password.
	maxPasswordBytes = 512

	// SecretMarker is a string we can look for in logs to see if the app
	// is accidentally exposing secrets.
	SecretMarker = krypto.SecretMarker
)

var ErrInvalidPassword = errors.New("invalid password")

// Password is a plaintext password.
//
// It should never be persisted, logged or exposed in any other way. To
// protect ourselves from accidentally doing so, the type implements
// several common interfaces that would allow it to be used inappropriately.
//
// There are only two operations allowed on a Password:
// - Converting it to a verifier.
// - Comparing it with an existing verifier to see if they match.
type Password struct {
	plain []byte
}

// ParsePassword creates a new Password from a plaintext string. Surrounding
// whitespace is removed. It errors if the password is empty or too long.
func ParsePassword(pwd string) (Password, error) {
	pwd = strings.TrimSpace(pwd)
	if len(pwd) == 0 || len(pwd) > maxPasswordBytes {
		return Password{}, ErrInvalidPassword
	}

	return Password{
		plain: []byte(pwd),
	}, nil
}

// Hash derives a verifier from the password. Every call uses a new salt,
// so hashing the same password twice results in different verifiers.
func (p Password) Hash() (string, error) {
	h, err := krypto.HashArgon2(p.plain)
	if err != nil {
		return "", err
	}

	return h.String(), nil
}

// Match reports whether the password matches the verifier. A mismatch is
// not an error. An error wrapping ErrMalformedCredential is returned if the
// verifier could not be parsed.
func (p Password) Match(verifier string) (bool, error) {
	h, err := krypto.ParseArgon2Hash(verifier)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedCredential, err)
	}

	return h.MatchBytes(p.plain), nil
}

// IsZero reports whether the password was never parsed.
func (p Password) IsZero() bool {
	return len(p.plain) == 0
}

func (p Password) Format(f fmt.State, verb rune) {
	f.Write([]byte(SecretMarker))
}

func (p Password) MarshalText() ([]byte, error) {
	return []byte(SecretMarker), nil
}

// LogValue implements the slog.LogValuer interface.
func (p Password) LogValue() slog.Value {
	return slog.StringValue(SecretMarker)
}
