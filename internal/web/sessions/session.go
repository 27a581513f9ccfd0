package sessions

import (
	"encoding/gob"

	"github.com/gorilla/sessions"
	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/email"
)

const emailKey = "email"

func init() {
	// Flashes are gob encoded into the cookie.
	gob.Register(auth.Notice{})
}

var _ auth.Session = (*Session)(nil)

// Session is the cookie backed session of a single client.
type Session struct {
	base      *sessions.Session
	needsSave bool
}

func (s *Session) NeedsSave() bool {
	return s.needsSave
}

func (s *Session) AuthenticatedEmail() (email.Address, bool) {
	addr, ok := s.base.Values[emailKey].(string)
	if !ok || addr == "" {
		return "", false
	}

	return email.Address(addr), true
}

func (s *Session) SetAuthenticatedEmail(addr email.Address) {
	s.needsSave = true
	s.base.Values[emailKey] = string(addr)
}

func (s *Session) ClearAuthenticatedEmail() {
	if _, ok := s.base.Values[emailKey]; !ok {
		return
	}

	s.needsSave = true
	delete(s.base.Values, emailKey)
}

func (s *Session) AddFlash(n auth.Notice) {
	s.needsSave = true
	s.base.AddFlash(n)
}

// ConsumeFlashes returns the flashes and removes them from the session.
func (s *Session) ConsumeFlashes() []auth.Notice {
	raw := s.base.Flashes()
	if len(raw) == 0 {
		return nil
	}

	s.needsSave = true

	notices := make([]auth.Notice, 0, len(raw))
	for _, f := range raw {
		if n, ok := f.(auth.Notice); ok {
			notices = append(notices, n)
		}
	}

	return notices
}
