package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/veridian-id/veridian/internal/accounts"
	"github.com/veridian-id/veridian/internal/auth"
	"github.com/veridian-id/veridian/internal/authz"
)

func newAuthServer(t *testing.T) (*httptest.Server, *authFixture) {
	t.Helper()
	f := newAuthFixture(t)

	mw := auth.Middleware{
		Tokens:   f.tokens,
		Accounts: accounts.NewService(f.repo),
		Authz:    authz.NewService(f.authRepo),
		Logger:   slog.Default(),
	}
	handler := auth.NewHandler(slog.Default(), f.service, mw)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, f
}

func postJSON(t *testing.T, url, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func TestLoginEndpoint(t *testing.T) {
	srv, f := newAuthServer(t)
	f.seedUser(t, "user@example.com", "hunter2secret", accounts.StatusActive, true)

	res := postJSON(t, srv.URL+"/auth/login", `{"email":"user@example.com","password":"hunter2secret"}`, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var pair auth.TokenPair
	require.NoError(t, json.NewDecoder(res.Body).Decode(&pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
}

func TestLoginEndpointRejectsInvalidPayload(t *testing.T) {
	srv, _ := newAuthServer(t)

	res := postJSON(t, srv.URL+"/auth/login", `{"email":"not-an-email","password":"short"}`, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLoginEndpointUniformUnauthorized(t *testing.T) {
	srv, f := newAuthServer(t)
	f.seedUser(t, "user@example.com", "hunter2secret", accounts.StatusActive, true)

	// Wrong password and unknown account look identical to the caller.
	badPass := postJSON(t, srv.URL+"/auth/login", `{"email":"user@example.com","password":"wrongpassword"}`, nil)
	require.Equal(t, http.StatusUnauthorized, badPass.StatusCode)

	unknown := postJSON(t, srv.URL+"/auth/login", `{"email":"ghost@example.com","password":"hunter2secret"}`, nil)
	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
}

func TestLoginEndpointForbiddenForSuspended(t *testing.T) {
	srv, f := newAuthServer(t)
	f.seedUser(t, "user@example.com", "hunter2secret", accounts.StatusSuspended, true)

	res := postJSON(t, srv.URL+"/auth/login", `{"email":"user@example.com","password":"hunter2secret"}`, nil)
	require.Equal(t, http.StatusForbidden, res.StatusCode)

	// The status-specific reason must not leak to the caller.
	var problem map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&problem))
	require.NotContains(t, strings.ToLower(problem["title"].(string)), "suspend")
}

func TestMeEndpoint(t *testing.T) {
	srv, f := newAuthServer(t)
	f.seedUser(t, "user@example.com", "hunter2secret", accounts.StatusActive, true)

	login := postJSON(t, srv.URL+"/auth/login", `{"email":"user@example.com","password":"hunter2secret"}`, nil)
	require.Equal(t, http.StatusOK, login.StatusCode)
	var pair auth.TokenPair
	require.NoError(t, json.NewDecoder(login.Body).Decode(&pair))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&me))
	require.Equal(t, "user@example.com", me.Email)
}

func TestMeEndpointRejectsMissingToken(t *testing.T) {
	srv, _ := newAuthServer(t)

	res, err := http.Get(srv.URL + "/auth/me")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestMeEndpointRejectsRefreshToken(t *testing.T) {
	srv, f := newAuthServer(t)
	f.seedUser(t, "user@example.com", "hunter2secret", accounts.StatusActive, true)

	pair, err := f.service.Login(context.Background(), "user@example.com", "hunter2secret")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLogoutEndpointAlwaysSucceeds(t *testing.T) {
	srv, f := newAuthServer(t)
	f.seedUser(t, "user@example.com", "hunter2secret", accounts.StatusActive, true)

	pair, err := f.service.Login(context.Background(), "user@example.com", "hunter2secret")
	require.NoError(t, err)

	body := `{"access_token":"garbage","refresh_token":"` + pair.RefreshToken + `"}`
	res := postJSON(t, srv.URL+"/auth/logout", body, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// The valid refresh token was revoked despite the garbage access token.
	refresh := postJSON(t, srv.URL+"/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, nil)
	require.Equal(t, http.StatusUnauthorized, refresh.StatusCode)
}

func TestRegisterEndpoint(t *testing.T) {
	srv, f := newAuthServer(t)

	res := postJSON(t, srv.URL+"/auth/register", `{"email":"new@example.com","password":"hunter2secret"}`, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	dup := postJSON(t, srv.URL+"/auth/register", `{"email":"new@example.com","password":"hunter2secret"}`, nil)
	require.Equal(t, http.StatusConflict, dup.StatusCode)

	code := f.mailer.emails["new@example.com"]
	require.NotEmpty(t, code)

	verify := postJSON(t, srv.URL+"/auth/verify-email", `{"code":"`+code+`"}`, nil)
	require.Equal(t, http.StatusOK, verify.StatusCode)

	login := postJSON(t, srv.URL+"/auth/login", `{"email":"new@example.com","password":"hunter2secret"}`, nil)
	require.Equal(t, http.StatusOK, login.StatusCode)
}
