package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/passgate/passgate/internal/web/sessions"
)

// session is a middleware that loads the session and injects it in the context.
//
// A cookie that can't be decoded, for example because the keys were
// rotated, results in a new anonymous session.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.deps.SessionStore.Get(r)
		if sess == nil {
			s.handleError(w, r, err)
			return
		}

		if err != nil {
			s.deps.Logger.WarnContext(r.Context(), "ignoring invalid session cookie", "error", err)
		}

		ctx := ctxWithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKey string

const sessionCtxKey ctxKey = "_session"

func ctxWithSession(ctx context.Context, sess *sessions.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sess)
}

func sessionFromCtx(ctx context.Context) (*sessions.Session, error) {
	sess, ok := ctx.Value(sessionCtxKey).(*sessions.Session)
	if !ok {
		return nil, fmt.Errorf("could not get session from context")
	}

	return sess, nil
}
