package handler

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-progress-api/internal/middleware"
	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type fakeAuthSrv struct {
	loginErr  error
	logoutErr error
	loggedOut *models.JWTClaims
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{Success: true, Role: models.RoleAdmin, User: models.UpstreamUser{Email: req.Email}, AccessToken: "tok", ExpiresIn: 3600}, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, claims *models.JWTClaims) error {
	f.loggedOut = claims
	return f.logoutErr
}

func TestAuthHandlerLoginSetsCookie(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthSrv{}, false)

	c, rec := testContext(http.MethodPost, "/auth/login", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, map[string]string{"email": "ada@x.io", "password": "pw"}))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := rec.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, middleware.TokenCookie+"=tok")
	assert.Contains(t, cookie, "HttpOnly")
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthSrv{loginErr: appErrors.ErrInvalidCredentials}, false)

	c, rec := testContext(http.MethodPost, "/auth/login", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("not json"))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = testContext(http.MethodPost, "/auth/login", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, map[string]string{"email": "ada@x.io", "password": "bad"}))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerLogoutAndMe(t *testing.T) {
	srv := &fakeAuthSrv{}
	handler := NewAuthHandler(srv, false)

	c, rec := testContext(http.MethodGet, "/auth/me", adminClaims())
	handler.Me(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)

	c, rec = testContext(http.MethodPost, "/auth/logout", adminClaims())
	handler.Logout(c)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, srv.loggedOut)
	assert.Equal(t, "sess-1", srv.loggedOut.SessionID)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

	c, rec = testContext(http.MethodPost, "/auth/logout", nil)
	handler.Logout(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
