package web

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"

	"github.com/gorilla/schema"
	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/errorz"
	"github.com/passgate/passgate/internal/web/sessions"
)

// credentialsForm is the form submitted to register and log in. The
// values are passed to the controller as-is, it takes care of trimming
// and validation.
type credentialsForm struct {
	Email    string `schema:"email"`
	Password string `schema:"password"`
}

func (s *Server) register(ctx context.Context, sess *sessions.Session, f credentialsForm) auth.Outcome {
	return s.deps.Controller.Register(ctx, sess, f.Email, f.Password)
}

func (s *Server) login(ctx context.Context, sess *sessions.Session, f credentialsForm) auth.Outcome {
	return s.deps.Controller.Login(ctx, sess, f.Email, f.Password)
}

func (s *Server) logout(ctx context.Context, sess *sessions.Session, _ struct{}) auth.Outcome {
	return s.deps.Controller.Logout(ctx, sess)
}

// onLogin writes the login outcome. When the session became authenticated
// the CSRF cookie is cleared.
func onLogin(r result[credentialsForm]) error {
	if _, ok := r.sess.AuthenticatedEmail(); ok && r.out.IsRedirect() {
		// We clear the CSRF token to provide defense in depth against fixation attacks.
		// If an attacker somehow gains access to the CSRF token before the user logged in, it will
		// be worthless after the user logs in.
		//
		// A new CSRF token will be generated on the next GET request after the redirect.
		http.SetCookie(r.w, &http.Cookie{
			Name:   csrfTokenCookieName,
			Path:   "/",
			MaxAge: -1,
		})
	}

	return r.s.respond(r.w, r.r, r.sess, r.out)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// decodeForm is the default way to map a request to a struct.
func decodeForm[IN any](srv *Server, r *http.Request) (IN, error) {
	var in IN
	err := r.ParseForm()
	if err != nil {
		return in, errorz.InvalidInput{err}
	}

	// Remove the CSRF token from the form, it won't need to be mapped
	// to any target types and the decoder will fail on it.
	r.PostForm.Del(csrfTokenField)

	err = srv.decoder.Decode(&in, r.PostForm)
	return in, decodeError(err)
}

func decodeError(err error) error {
	if err == nil {
		return nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		var invalidInput errorz.InvalidInput
		for _, key := range slices.Sorted(maps.Keys(multiErr)) {
			invalidInput = append(invalidInput, errorz.Keyed{
				Key: key,
				Err: multiErr[key],
			})
		}

		return invalidInput
	}

	return err
}
