package sessions

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/passgate/passgate/internal/krypto"
)

const CookieName = "passgate-session"

type Store struct {
	store sessions.Store
}

func NewStore(store sessions.Store) *Store {
	return &Store{store: store}
}

// NewCookieStore creates a store that keeps all session state in a cookie.
//
// Keys are used in pairs: the first key of a pair authenticates the cookie,
// the second one encrypts it. Multiple pairs allow keys to be rotated, only
// the first pair is used to create new cookies. The cookie expires when the
// browser is closed.
func NewCookieStore(keys []krypto.Key, secure bool) *Store {
	pairs := make([][]byte, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k.SecretValue())
	}

	cs := sessions.NewCookieStore(pairs...)
	cs.MaxAge(0)
	cs.Options.Path = "/"
	cs.Options.HttpOnly = true
	cs.Options.Secure = secure
	cs.Options.SameSite = http.SameSiteLaxMode

	return NewStore(cs)
}

// Get returns the session for the request. When the session cookie can not
// be decoded, a new session is returned together with the error.
func (s *Store) Get(r *http.Request) (*Session, error) {
	base, err := s.store.Get(r, CookieName)
	if base == nil {
		return nil, err
	}

	return &Session{base: base}, err
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *Session) error {
	err := s.store.Save(r, w, sess.base)
	if err != nil {
		return err
	}

	sess.needsSave = false
	return nil
}
