package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Controller moves sessions between the anonymous and authenticated states.
//
// Failures never propagate to the caller. They are logged with their cause
// and turned into a user facing Notice that does not reveal internals.
type Controller struct {
	svc    *Service
	logger *slog.Logger
}

func NewController(svc *Service, logger *slog.Logger) *Controller {
	return &Controller{
		svc:    svc,
		logger: logger,
	}
}

// Landing renders the home view for authenticated sessions and sends
// anonymous sessions to the login form.
func (c *Controller) Landing(sess Session) Outcome {
	addr, ok := sess.AuthenticatedEmail()
	if !ok {
		return redirect(PathLogin, Notice{})
	}

	return Outcome{
		View:  ViewHome,
		Email: string(addr),
	}
}

// RegisterForm shows the registration form to anonymous sessions.
func (c *Controller) RegisterForm(sess Session) Outcome {
	return c.anonymousView(sess, ViewRegister)
}

// LoginForm shows the login form to anonymous sessions.
func (c *Controller) LoginForm(sess Session) Outcome {
	return c.anonymousView(sess, ViewLogin)
}

func (c *Controller) anonymousView(sess Session, view string) Outcome {
	if _, ok := sess.AuthenticatedEmail(); ok {
		return redirect(PathLanding, Notice{})
	}

	return Outcome{View: view}
}

// Register creates a new user. The session stays anonymous, also when
// registration succeeds.
func (c *Controller) Register(ctx context.Context, sess Session, rawEmail, rawPassword string) Outcome {
	if _, ok := sess.AuthenticatedEmail(); ok {
		return redirect(PathLanding, Notice{})
	}

	form := Outcome{
		View:  ViewRegister,
		Email: strings.TrimSpace(rawEmail),
	}

	creds, err := ParseCredentials(rawEmail, rawPassword)
	if err != nil {
		c.logger.InfoContext(ctx, "registration rejected", "reason", "invalid input", "error", err)
		return form.with(noticeValidation)
	}

	user, err := c.svc.RegisterUser(ctx, creds)
	switch {
	case err == nil:
		c.logger.InfoContext(ctx, "user registered", "userID", user.ID)
		return redirect(PathLogin, noticeRegistered)
	case errors.Is(err, ErrDuplicateEmail):
		c.logger.InfoContext(ctx, "registration rejected", "reason", "duplicate email")
		return form.with(noticeDuplicateEmail)
	case errors.Is(err, ErrValidation):
		c.logger.InfoContext(ctx, "registration rejected", "reason", "invalid input", "error", err)
		return form.with(noticeValidation)
	default:
		c.logger.ErrorContext(ctx, "registration failed", "reason", "store unavailable", "error", err)
		return form.with(noticeUnavailable)
	}
}

// Login authenticates the session when the credentials match a stored
// user. On any failure the session is left untouched and the same notice
// is returned, whatever the cause.
func (c *Controller) Login(ctx context.Context, sess Session, rawEmail, rawPassword string) Outcome {
	if _, ok := sess.AuthenticatedEmail(); ok {
		return redirect(PathLanding, Notice{})
	}

	form := Outcome{
		View:  ViewLogin,
		Email: strings.TrimSpace(rawEmail),
	}

	creds, err := ParseCredentials(rawEmail, rawPassword)
	if err != nil {
		c.logger.InfoContext(ctx, "login rejected", "reason", "invalid input", "error", err)
		return form.with(noticeValidation)
	}

	user, err := c.svc.Authenticate(ctx, creds)
	switch {
	case err == nil:
		sess.SetAuthenticatedEmail(user.Email)
		c.logger.InfoContext(ctx, "user logged in", "userID", user.ID)
		return redirect(PathLanding, noticeLoggedIn)
	case errors.Is(err, ErrNotFound):
		c.logger.InfoContext(ctx, "login failed", "reason", "unknown email")
	case errors.Is(err, ErrPasswordMismatch):
		c.logger.InfoContext(ctx, "login failed", "reason", "password mismatch")
	case errors.Is(err, ErrMalformedCredential):
		c.logger.ErrorContext(ctx, "login failed", "reason", "malformed stored credential", "error", err)
	case errors.Is(err, ErrValidation):
		c.logger.InfoContext(ctx, "login rejected", "reason", "invalid input", "error", err)
		return form.with(noticeValidation)
	default:
		c.logger.ErrorContext(ctx, "login failed", "reason", "store unavailable", "error", err)
	}

	return form.with(noticeInvalidCredentials)
}

// Logout makes the session anonymous. It never touches the store.
func (c *Controller) Logout(ctx context.Context, sess Session) Outcome {
	_, wasAuthenticated := sess.AuthenticatedEmail()
	sess.ClearAuthenticatedEmail()

	c.logger.InfoContext(ctx, "user logged out", "wasAuthenticated", wasAuthenticated)

	return redirect(PathLogin, noticeLoggedOut)
}
