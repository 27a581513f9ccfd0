package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/schema"
	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/errorz"
	"github.com/passgate/passgate/internal/krypto"
	"github.com/passgate/passgate/internal/web/sessions"
)

const (
	csrfTokenCookieName = "passgate-csrf"
	csrfTokenField      = "csrf_token"
)

// ViewRenderer renders named views with the given data.
type ViewRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger       *slog.Logger
	ViewRenderer ViewRenderer
	Controller   *auth.Controller
	SessionStore *sessions.Store
}

// ServerConfig is the configuration for the server.
type ServerConfig struct {
	CSRFKey krypto.Key
	// SecureCookie marks cookies as secure. When false, requests are
	// treated as plain HTTP requests.
	SecureCookie bool
}

type Server struct {
	deps    *ServerDeps
	mux     *http.ServeMux
	decoder *schema.Decoder
	handler http.Handler
}

func NewServer(deps *ServerDeps, cfg ServerConfig) *Server {
	s := &Server{
		deps:    deps,
		mux:     http.NewServeMux(),
		decoder: schema.NewDecoder(),
	}

	// The controller decides what happens for every route, including
	// redirects for sessions that are in the wrong state. The handlers
	// below only map between HTTP and controller calls.

	// Landing page.
	s.mux.Handle("GET /{$}", mapSession(s, deps.Controller.Landing))

	// Register user endpoints.
	s.mux.Handle("GET /register", mapSession(s, deps.Controller.RegisterForm))
	s.mux.Handle("POST /register", mapForm(s, s.register))

	// Login user endpoints.
	s.mux.Handle("GET /login", mapSession(s, deps.Controller.LoginForm))
	s.mux.Handle("POST /login", mapForm(s, s.login).response(onLogin))

	// Logout user endpoint.
	s.mux.Handle("POST /logout", mapForm(s, s.logout))

	s.mux.HandleFunc("GET /healthz", healthz)

	// Wrap the mux with global middlewares.
	csrfMW := csrf.Protect(
		cfg.CSRFKey.SecretValue(),
		csrf.CookieName(csrfTokenCookieName),
		csrf.FieldName(csrfTokenField),
		csrf.Path("/"),
		csrf.Secure(cfg.SecureCookie),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailed)),
	)

	middlewares := []func(http.Handler) http.Handler{
		requestID,
		s.logRequest,
		plaintext(!cfg.SecureCookie),
		csrfMW,
		s.session,
	}
	s.handler = s.mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		s.handler = middlewares[i](s.handler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// respond writes the outcome of a controller call. Redirects carry their
// notice as a flash to the next page, views show it directly.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *sessions.Session, out auth.Outcome) error {
	if !out.IsRedirect() {
		return s.writeView(w, r, sess, out)
	}

	if !out.Notice.IsZero() {
		sess.AddFlash(out.Notice)
	}

	err := s.saveSession(w, r, sess)
	if err != nil {
		return err
	}

	http.Redirect(w, r, out.Redirect, http.StatusFound)
	return nil
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, sess *sessions.Session, out auth.Outcome) error {
	data := s.prepViewData(r, sess, out)

	// Consuming flashes altered the session.
	err := s.saveSession(w, r, sess)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.deps.ViewRenderer.Render(w, out.View, data)
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	if !sess.NeedsSave() {
		return nil
	}

	return s.deps.SessionStore.Save(r, w, sess)
}

func (s *Server) csrfFailed(w http.ResponseWriter, r *http.Request) {
	s.deps.Logger.WarnContext(r.Context(), "csrf check failed", "url", r.URL.String(), "reason", csrf.FailureReason(r))
	http.Error(w, "forbidden", http.StatusForbidden)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errorz.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var invalidInput errorz.InvalidInput
	if errors.As(err, &invalidInput) {
		s.deps.Logger.InfoContext(r.Context(), "invalid request", "url", r.URL.String(), "fields", invalidInput.Keys(), "error", err)
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	s.deps.Logger.ErrorContext(r.Context(), "internal server error", "url", r.URL.String(), "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
