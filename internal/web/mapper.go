package web

import (
	"context"
	"net/http"

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/web/sessions"
)

// mapper is a generic HTTP handler that maps requests to controller
// calls and writes the resulting outcome to the response.
type mapper[IN any] struct {
	s      *Server
	req    func(*http.Request) (IN, error)
	target func(context.Context, *sessions.Session, IN) auth.Outcome
	res    func(result[IN]) error
}

// result is the result of a controller call.
// it contains all relevant data because we can't know
// in advance what we will need to construct a response.
type result[IN any] struct {
	s    *Server
	r    *http.Request
	w    http.ResponseWriter
	sess *sessions.Session
	in   IN
	out  auth.Outcome
}

// mapForm creates a HTTP Handler that:
// 1. Decodes the request form into a value of type IN.
// 2. Calls the target func with the session and that value.
// 3. Writes the outcome to the response.
//
// Malformed forms are written using the server error handler.
func mapForm[IN any](s *Server, targetFunc func(context.Context, *sessions.Session, IN) auth.Outcome) *mapper[IN] {
	return &mapper[IN]{
		s: s,
		req: func(r *http.Request) (IN, error) {
			return decodeForm[IN](s, r)
		},
		target: targetFunc,
		res: func(r result[IN]) error {
			return r.s.respond(r.w, r.r, r.sess, r.out)
		},
	}
}

// mapSession creates a HTTP Handler that calls the target func with
// the session and writes the outcome to the response.
func mapSession(s *Server, targetFunc func(auth.Session) auth.Outcome) *mapper[struct{}] {
	return &mapper[struct{}]{
		s: s,
		req: func(r *http.Request) (struct{}, error) {
			return struct{}{}, nil
		},
		target: func(_ context.Context, sess *sessions.Session, _ struct{}) auth.Outcome {
			return targetFunc(sess)
		},
		res: func(r result[struct{}]) error {
			return r.s.respond(r.w, r.r, r.sess, r.out)
		},
	}
}

// response overwrites the function that writes the outcome to the response.
func (m *mapper[IN]) response(fn func(result[IN]) error) *mapper[IN] {
	m.res = fn
	return m
}

func (m *mapper[IN]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		m.s.handleError(w, r, err)
		return
	}

	in, err := m.req(r)
	if err != nil {
		m.s.handleError(w, r, err)
		return
	}

	out := m.target(r.Context(), sess, in)

	err = m.res(result[IN]{
		s:    m.s,
		r:    r,
		w:    w,
		sess: sess,
		in:   in,
		out:  out,
	})
	if err != nil {
		m.s.handleError(w, r, err)
		return
	}
}
