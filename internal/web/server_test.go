package web_test

import (
	"bytes"
	"encoding/hex"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/passgate/passgate/assets"
	"github.com/passgate/passgate/internal/auth"
	authdb "github.com/passgate/passgate/internal/auth/db"
	"github.com/passgate/passgate/internal/db"
	"github.com/passgate/passgate/internal/db/testdb"
	"github.com/passgate/passgate/internal/krypto"
	"github.com/passgate/passgate/internal/web"
	"github.com/passgate/passgate/internal/web/sessions"
	"github.com/passgate/passgate/internal/web/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Server_UserFlow(t *testing.T) {
	st := newServerTest(t)

	// Anonymous users land on the login form.
	res, body := st.get("/")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "/login", res.Request.URL.Path)
	assert.Contains(t, body, `id="login-form"`)

	// Register, the user is sent to login and is not logged in.
	res, body = st.postForm("/register", "/register", url.Values{
		"email":    {"a@x.com"},
		"password": {"p1"},
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "/login", res.Request.URL.Path)
	assert.Contains(t, body, "Registration successful, you can now log in.")
	assert.NotContains(t, body, `id="logout-form"`)

	// The flash is only shown once.
	_, body = st.get("/login")
	assert.NotContains(t, body, "Registration successful")

	// Login.
	res, body = st.postForm("/login", "/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"p1"},
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "/", res.Request.URL.Path)
	assert.Contains(t, body, `<strong id="authenticated-email">a@x.com</strong>`)
	assert.Contains(t, body, "You are now logged in.")

	// Logged in users don't get to see the forms.
	res, _ = st.get("/register")
	assert.Equal(t, "/", res.Request.URL.Path)

	// Logout.
	res, body = st.postForm("/", "/logout", url.Values{})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "/login", res.Request.URL.Path)
	assert.Contains(t, body, "You have been logged out.")

	res, _ = st.get("/")
	assert.Equal(t, "/login", res.Request.URL.Path)

	// Wrong password.
	res, body = st.postForm("/login", "/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"p2"},
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "/login", res.Request.URL.Path)
	assert.Contains(t, body, "Invalid email address or password.")
	assert.Contains(t, body, `value="a@x.com"`)
	assert.NotContains(t, body, `value="p2"`)
}

func Test_Server_Register(t *testing.T) {
	t.Run("fail, duplicate email", func(t *testing.T) {
		st := newServerTest(t)
		form := url.Values{"email": {"a@x.com"}, "password": {"p1"}}

		st.postForm("/register", "/register", form)
		res, body := st.postForm("/register", "/register", form)

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "/register", res.Request.URL.Path)
		assert.Contains(t, body, "An account with this email address already exists.")
	})

	t.Run("fail, invalid input", func(t *testing.T) {
		st := newServerTest(t)

		res, body := st.postForm("/register", "/register", url.Values{"email": {" "}, "password": {""}})

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "Please fill in a valid email address and password.")
	})

	t.Run("fail, unknown form field", func(t *testing.T) {
		st := newServerTest(t)

		res, _ := st.postForm("/register", "/register", url.Values{
			"email":    {"a@x.com"},
			"password": {"p1"},
			"admin":    {"true"},
		})

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Contains(t, st.logs.String(), "invalid request")
		assert.Contains(t, st.logs.String(), "fields=[admin]")
	})

	t.Run("fail, missing csrf token", func(t *testing.T) {
		st := newServerTest(t)

		res, err := st.client.PostForm(st.srv.URL+"/register", url.Values{
			"email":    {"a@x.com"},
			"password": {"p1"},
		})
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})
}

func Test_Server_Session(t *testing.T) {
	t.Run("ok, invalid cookie is anonymous", func(t *testing.T) {
		st := newServerTest(t)

		u, err := url.Parse(st.srv.URL)
		require.NoError(t, err)
		st.client.Jar.SetCookies(u, []*http.Cookie{{Name: sessions.CookieName, Value: "garbage", Path: "/"}})

		res, _ := st.get("/")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "/login", res.Request.URL.Path)
		assert.Contains(t, st.logs.String(), "ignoring invalid session cookie")
	})

	t.Run("ok, session cookie does not leak the email", func(t *testing.T) {
		st := newServerTest(t)
		form := url.Values{"email": {"a@x.com"}, "password": {"p1"}}

		st.postForm("/register", "/register", form)
		st.postForm("/login", "/login", form)

		u, err := url.Parse(st.srv.URL)
		require.NoError(t, err)

		var found bool
		for _, c := range st.client.Jar.Cookies(u) {
			if c.Name == sessions.CookieName {
				found = true
				assert.NotContains(t, c.Value, "a@x.com")
			}
		}
		assert.True(t, found, "session cookie not found")
	})
}

func Test_Server_Misc(t *testing.T) {
	st := newServerTest(t)

	t.Run("ok, healthz", func(t *testing.T) {
		res, body := st.get("/healthz")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "ok", body)
		assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
	})

	t.Run("fail, unknown path", func(t *testing.T) {
		res, _ := st.get("/dashboard")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("fail, logout over GET", func(t *testing.T) {
		res, _ := st.get("/logout")
		assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	})

	t.Run("ok, requests are logged with their id", func(t *testing.T) {
		st.get("/healthz")
		assert.Contains(t, st.logs.String(), "handled request")
		assert.Contains(t, st.logs.String(), "requestID")
	})
}

type serverTest struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	logs   *syncBuffer
}

func newServerTest(t *testing.T) *serverTest {
	t.Helper()

	logs := &syncBuffer{}
	logger := slog.New(web.LogHandler(slog.NewTextHandler(logs, nil)))

	sqlDB := testdb.RunWhile(t, db.DriverCGO)

	svc, err := auth.NewService(authdb.New(sqlDB, sqlDB))
	require.NoError(t, err)

	renderer, err := view.NewMemRenderer(assets.TemplateFS)
	require.NoError(t, err)

	server := web.NewServer(&web.ServerDeps{
		Logger:       logger,
		ViewRenderer: renderer,
		Controller:   auth.NewController(svc, logger),
		SessionStore: sessions.NewCookieStore(testKeys(t, 2), false),
	}, web.ServerConfig{
		CSRFKey:      testKeys(t, 1)[0],
		SecureCookie: false,
	})

	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &serverTest{
		t:      t,
		srv:    srv,
		client: &http.Client{Jar: jar},
		logs:   logs,
	}
}

func (st *serverTest) get(path string) (*http.Response, string) {
	st.t.Helper()

	res, err := st.client.Get(st.srv.URL + path)
	require.NoError(st.t, err)

	return res, readBody(st.t, res)
}

// postForm gets the page at formPath to obtain a CSRF token, then posts
// the form to action.
func (st *serverTest) postForm(formPath, action string, form url.Values) (*http.Response, string) {
	st.t.Helper()

	_, page := st.get(formPath)
	form.Set("csrf_token", csrfToken(st.t, page))

	res, err := st.client.PostForm(st.srv.URL+action, form)
	require.NoError(st.t, err)

	return res, readBody(st.t, res)
}

var csrfTokenRe = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func csrfToken(t *testing.T, page string) string {
	t.Helper()

	m := csrfTokenRe.FindStringSubmatch(page)
	require.Len(t, m, 2, "no csrf token found in page:\n%s", page)

	return html.UnescapeString(m[1])
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return strings.TrimSpace(string(b))
}

// syncBuffer is written to by the server goroutines while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testKeys(t *testing.T, n int) []krypto.Key {
	t.Helper()

	keys := make([]krypto.Key, 0, n)
	for i := 0; i < n; i++ {
		b, err := krypto.RandomBytes(32)
		require.NoError(t, err)

		k, err := krypto.ParseKey(hex.EncodeToString(b))
		require.NoError(t, err)

		keys = append(keys, k)
	}

	return keys
}
