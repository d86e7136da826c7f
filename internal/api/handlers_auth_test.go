// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/models"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "New.User@Example.COM ",
		"name":     "New User",
		"password": "a-long-enough-password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp sessionResponse
	decodeData(t, rec, &resp)
	require.NotNil(t, resp.Session)
	assert.Equal(t, models.RoleUser, resp.Session.Role)
	assert.Equal(t, "/dashboard", resp.Redirect)

	cookie := sessionCookie(t, rec, ts.auth.CookieName)
	require.NotNil(t, cookie, "register must set the session cookie")
	assert.True(t, cookie.HttpOnly)

	t.Run("email stored lowercased and trimmed", func(t *testing.T) {
		u, err := ts.db.GetUserByEmail(t.Context(), "new.user@example.com")
		require.NoError(t, err)
		assert.Equal(t, "New User", u.Name)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email":    "new.user@example.com",
			"name":     "Impostor",
			"password": "another-long-password",
		}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "new.user@example.com",
			"password": "not-the-password",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login succeeds", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "new.user@example.com",
			"password": "a-long-enough-password",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, sessionCookie(t, rec, ts.auth.CookieName))
	})

	t.Run("login honors safe callbackUrl", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost,
			"/api/auth/login?callbackUrl=%2Fprojects%2F42%2Fedit%3Ftab%3Dbudget",
			map[string]string{
				"email":    "new.user@example.com",
				"password": "a-long-enough-password",
			}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp sessionResponse
		decodeData(t, rec, &resp)
		assert.Equal(t, "/projects/42/edit?tab=budget", resp.Redirect)
	})

	t.Run("login rejects external callbackUrl", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost,
			"/api/auth/login?callbackUrl=%2F%2Fevil.example.com",
			map[string]string{
				"email":    "new.user@example.com",
				"password": "a-long-enough-password",
			}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp sessionResponse
		decodeData(t, rec, &resp)
		assert.Equal(t, "/dashboard", resp.Redirect)
	})
}

func TestLoginUnavailableWithoutCredentialsProvider(t *testing.T) {
	// An edge configuration serves the gate only; its login endpoint
	// must refuse cleanly rather than dereference a nil provider.
	edge, err := auth.NewEdgeConfig(t.Context(), &config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		SessionTimeout:       time.Hour,
		DefaultLoginRedirect: "/dashboard",
		CookieName:           "stagegate_session",
	})
	require.NoError(t, err)

	h := &Handler{auth: edge}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"u@example.com","password":"a-long-enough-password"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, codeCredentialsDisabled, decodeEnvelope(t, rec).Error.Code)
}

func TestSessionEndpoint(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "user@example.com", models.RoleReviewer)

	t.Run("without cookie", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/auth/session", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("with cookie", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/auth/session", nil, ts.cookieFor(t, user))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp sessionResponse
		decodeData(t, rec, &resp)
		assert.Equal(t, user.ID.String(), resp.Session.UserID)
		assert.Equal(t, models.RoleReviewer, resp.Session.Role)
	})
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "user@example.com", models.RoleUser)
	cookie := ts.cookieFor(t, user)

	require.NoError(t, ts.db.UpdateUserRole(t.Context(), user.ID.String(), models.RoleProjectLead))

	rec := ts.do(t, http.MethodPost, "/api/auth/session/refresh", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp sessionResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, models.RoleProjectLead, resp.Session.Role)

	fresh := sessionCookie(t, rec, ts.auth.CookieName)
	require.NotNil(t, fresh, "refresh must reissue the cookie")
	assert.NotEqual(t, cookie.Value, fresh.Value)
}

func TestLogoutClearsCookie(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "user@example.com", models.RoleUser)

	rec := ts.do(t, http.MethodPost, "/api/auth/logout", nil, ts.cookieFor(t, user))
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := sessionCookie(t, rec, ts.auth.CookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestEmailVerificationFlow(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "user@example.com", models.RoleUser)

	token, err := ts.h.issuePurposeToken(user.ID.String(), purposeVerifyEmail, time.Hour)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/auth/new-verification",
		map[string]string{"token": token}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := ts.db.GetUserByID(t.Context(), user.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, got.EmailVerifiedAt)

	t.Run("garbage token rejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/new-verification",
			map[string]string{"token": "not-a-token"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "user@example.com", models.RoleUser)

	t.Run("request is uniform for unknown emails", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/reset",
			map[string]string{"email": "nobody@example.com"}, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	token, err := ts.h.issuePurposeToken(user.ID.String(), purposeResetPassword, time.Hour)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/auth/new-password", map[string]string{
		"token":    token,
		"password": "brand-new-password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "brand-new-password",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "correct-horse-battery",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "old password must stop working")
}

func TestPurposeTokensAreNotInterchangeable(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "user@example.com", models.RoleUser)

	verify, err := ts.h.issuePurposeToken(user.ID.String(), purposeVerifyEmail, time.Hour)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/auth/new-password", map[string]string{
		"token":    verify,
		"password": "should-not-take-effect",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuthStartUnknownProvider(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/auth/oauth/missing/start", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeUnknownProvider, decodeEnvelope(t, rec).Error.Code)
}

func TestSanitizeCallback(t *testing.T) {
	cases := []struct {
		name     string
		callback string
		want     string
	}{
		{"empty falls back", "", "/dashboard"},
		{"local path kept", "/projects/1", "/projects/1"},
		{"query kept", "/projects/1/edit?tab=budget", "/projects/1/edit?tab=budget"},
		{"protocol-relative rejected", "//evil.example.com", "/dashboard"},
		{"absolute url rejected", "https://evil.example.com", "/dashboard"},
		{"backslash rejected", "/\\evil.example.com", "/dashboard"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeCallback(tc.callback, "/dashboard"))
		})
	}
}
