package web

import (
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/passgate/passgate/internal"
	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/web/sessions"
)

type viewData struct {
	Version    string
	CSRFField  string
	CSRFToken  string
	IsLoggedIn bool
	Email      string
	Flashes    []auth.Notice
	Notice     auth.Notice
	FormEmail  string
}

// prepViewData prepares the data that will be passed to the view. It
// consumes the flashes, so the session needs to be saved afterwards.
func (s *Server) prepViewData(r *http.Request, sess *sessions.Session, out auth.Outcome) *viewData {
	addr, loggedIn := sess.AuthenticatedEmail()

	return &viewData{
		Version:    internal.BuildInfo.ShortRevision(),
		CSRFField:  csrfTokenField,
		CSRFToken:  csrf.Token(r),
		IsLoggedIn: loggedIn,
		Email:      string(addr),
		Flashes:    sess.ConsumeFlashes(),
		Notice:     out.Notice,
		FormEmail:  out.Email,
	}
}
