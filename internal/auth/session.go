package auth

import "github.com/passgate/passgate/internal/email"

// Session is the authentication state of a single client. A session is
// either anonymous or authenticated as exactly one email address.
//
// Sessions are passed explicitly to every Controller method, they are
// never shared between clients.
type Session interface {
	AuthenticatedEmail() (email.Address, bool)
	SetAuthenticatedEmail(addr email.Address)
	ClearAuthenticatedEmail()
}

// MemorySession is a Session that lives only in memory. The zero value is
// an anonymous session.
type MemorySession struct {
	addr email.Address
	ok   bool
}

func (s *MemorySession) AuthenticatedEmail() (email.Address, bool) {
	return s.addr, s.ok
}

func (s *MemorySession) SetAuthenticatedEmail(addr email.Address) {
	s.addr = addr
	s.ok = true
}

func (s *MemorySession) ClearAuthenticatedEmail() {
	s.addr = ""
	s.ok = false
}
