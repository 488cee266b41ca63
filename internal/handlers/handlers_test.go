package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"PropertyManager/internal/auth"
	"PropertyManager/internal/db"
	"PropertyManager/internal/models"
	"PropertyManager/internal/sessions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HandlersTestSuite struct {
	suite.Suite
	store  *db.DB
	srv    *httptest.Server
	client *http.Client
}

func (s *HandlersTestSuite) SetupTest() {
	ctx := context.Background()
	name := strings.ReplaceAll(s.T().Name(), "/", "_")
	store, err := db.Open(ctx, "sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(s.T(), err)
	require.NoError(s.T(), store.Migrate(ctx))
	_, err = store.EnsureAdmin(ctx, "admin@example.com", "admin123")
	require.NoError(s.T(), err)

	sm := sessions.NewManager(sessions.NewCookieStore("test-secret", 3600, false))
	h, err := New(auth.NewGate(store), sm, store)
	require.NoError(s.T(), err)

	s.store = store
	s.srv = httptest.NewServer(h.Routes())
	s.client = s.newClient()
}

func (s *HandlersTestSuite) TearDownTest() {
	s.srv.Close()
	_ = s.store.Close()
}

// newClient — клиент с отдельной кукой и без следования редиректам.
func (s *HandlersTestSuite) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(s.T(), err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *HandlersTestSuite) get(c *http.Client, path string) (*http.Response, string) {
	resp, err := c.Get(s.srv.URL + path)
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, string(body)
}

func (s *HandlersTestSuite) login(c *http.Client, form url.Values) (*http.Response, string) {
	resp, err := c.PostForm(s.srv.URL+"/login", form)
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, string(body)
}

func creds(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func (s *HandlersTestSuite) TestIndexAnonymous() {
	resp, body := s.get(s.client, "/")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Contains(s.T(), body, "Welcome to Property Manager")
	assert.Contains(s.T(), body, `href="/login"`)
}

func (s *HandlersTestSuite) TestLoginPageHasNoPrefilledSecret() {
	resp, body := s.get(s.client, "/login")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Contains(s.T(), body, `name="email"`)
	assert.NotContains(s.T(), body, "admin123")
}

func (s *HandlersTestSuite) TestLoginSuccess() {
	resp, _ := s.login(s.client, creds("admin@example.com", "admin123"))
	require.Equal(s.T(), http.StatusFound, resp.StatusCode)
	assert.Equal(s.T(), "/dashboard", resp.Header.Get("Location"))

	resp, body := s.get(s.client, "/dashboard")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Contains(s.T(), body, "Total properties: 0")
	assert.Contains(s.T(), body, "admin@example.com")

	resp, _ = s.get(s.client, "/")
	assert.Equal(s.T(), http.StatusFound, resp.StatusCode)
	assert.Equal(s.T(), "/dashboard", resp.Header.Get("Location"))
}

func (s *HandlersTestSuite) TestLoginRepeatedInNewRequest() {
	first, _ := s.login(s.client, creds("admin@example.com", "admin123"))
	assert.Equal(s.T(), http.StatusFound, first.StatusCode)

	second, _ := s.login(s.client, creds("admin@example.com", "admin123"))
	assert.Equal(s.T(), http.StatusFound, second.StatusCode)

	fresh, _ := s.login(s.newClient(), creds("admin@example.com", "admin123"))
	assert.Equal(s.T(), http.StatusFound, fresh.StatusCode)
}

func (s *HandlersTestSuite) TestLoginFailuresAreIdentical() {
	wrongEmail, bodyEmail := s.login(s.newClient(), creds("nobody@example.com", "admin123"))
	wrongPass, bodyPass := s.login(s.newClient(), creds("admin@example.com", "nope"))
	again, bodyAgain := s.login(s.newClient(), creds("admin@example.com", "nope"))

	for _, resp := range []*http.Response{wrongEmail, wrongPass, again} {
		assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
		assert.Empty(s.T(), resp.Header.Values("Set-Cookie"))
	}
	assert.Contains(s.T(), bodyEmail, invalidCredentials)
	assert.Equal(s.T(), bodyEmail, bodyPass)
	assert.Equal(s.T(), bodyPass, bodyAgain)

	resp, _ := s.get(s.client, "/dashboard")
	assert.Equal(s.T(), http.StatusFound, resp.StatusCode)
}

func (s *HandlersTestSuite) TestLoginMissingFields() {
	resp, body := s.login(s.client, url.Values{})
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(s.T(), body, invalidCredentials)
}

func (s *HandlersTestSuite) TestDashboardRequiresLogin() {
	resp, _ := s.get(s.client, "/dashboard")
	require.Equal(s.T(), http.StatusFound, resp.StatusCode)
	assert.Equal(s.T(), "/login?next=%2Fdashboard", resp.Header.Get("Location"))

	// flash показывается на странице входа ровно один раз
	_, body := s.get(s.client, "/login?next=%2Fdashboard")
	assert.Contains(s.T(), body, "Please log in first.")
	assert.Contains(s.T(), body, `name="next" value="/dashboard"`)

	_, body = s.get(s.client, "/login")
	assert.NotContains(s.T(), body, "Please log in first.")
}

func (s *HandlersTestSuite) TestLoginHonorsLocalNextOnly() {
	form := creds("admin@example.com", "admin123")
	form.Set("next", "/dashboard?tab=1")
	resp, _ := s.login(s.newClient(), form)
	assert.Equal(s.T(), "/dashboard?tab=1", resp.Header.Get("Location"))

	for _, next := range []string{"//evil.example.com", "/\t/evil.example.com", "/\t\\evil.example.com"} {
		form.Set("next", next)
		resp, _ = s.login(s.newClient(), form)
		assert.Equal(s.T(), http.StatusFound, resp.StatusCode, "next %q", next)
		assert.Equal(s.T(), "/dashboard", resp.Header.Get("Location"), "next %q", next)
	}
}

func (s *HandlersTestSuite) TestDashboardCountsProperties() {
	ctx := context.Background()
	_, err := s.store.CreateProperty(ctx, "Flat 1", "", "")
	require.NoError(s.T(), err)
	_, err = s.store.CreateProperty(ctx, "Flat 2", "2 High St", "let")
	require.NoError(s.T(), err)

	s.login(s.client, creds("admin@example.com", "admin123"))
	_, body := s.get(s.client, "/dashboard")
	assert.Contains(s.T(), body, "Total properties: 2")
}

func (s *HandlersTestSuite) TestLogout() {
	s.login(s.client, creds("admin@example.com", "admin123"))

	resp, _ := s.get(s.client, "/logout")
	require.Equal(s.T(), http.StatusFound, resp.StatusCode)
	assert.Equal(s.T(), "/", resp.Header.Get("Location"))

	resp, _ = s.get(s.client, "/dashboard")
	assert.Equal(s.T(), http.StatusFound, resp.StatusCode)
}

func (s *HandlersTestSuite) TestLogoutRequiresLogin() {
	resp, _ := s.get(s.client, "/logout")
	assert.Equal(s.T(), http.StatusFound, resp.StatusCode)
	assert.Equal(s.T(), "/login?next=%2Flogout", resp.Header.Get("Location"))
}

func (s *HandlersTestSuite) TestHealth() {
	resp, body := s.get(s.client, "/healthz")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.JSONEq(s.T(), `{"status":"ok"}`, body)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

type downStore struct{}

func (downStore) UserByID(context.Context, int64) (models.User, error) {
	return models.User{}, errors.New("down")
}
func (downStore) CountProperties(context.Context) (int, error) { return 0, errors.New("down") }
func (downStore) PingContext(context.Context) error            { return errors.New("down") }

func TestHealth_DatabaseDown(t *testing.T) {
	sm := sessions.NewManager(sessions.NewCookieStore("test-secret", 3600, false))
	h, err := New(nil, sm, downStore{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "down")
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"/dashboard":         "/dashboard",
		"dashboard":          "",
		"//evil.com":         "",
		"/\\evil.com":        "",
		"https://evil.com/":  "",
		"/ok\r\nSet-Cookie:": "",
		"/\t/evil.com":       "",
		"/\t\\evil.com":      "",
		"/\x7f/evil.com":     "",
		"/a\x00b":            "",
		"/dashboard?tab=1":   "/dashboard?tab=1",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), "input %q", in)
	}
}
