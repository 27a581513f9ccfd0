package auth

import (
	"github.com/passgate/passgate/internal/email"
)

// User contains the data for a user.
type User struct {
	ID           int
	Email        email.Address
	PasswordHash string
}
