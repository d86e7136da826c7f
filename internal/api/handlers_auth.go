// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/stagegatehq/stagegate/internal/access"
	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/logging"
	"github.com/stagegatehq/stagegate/internal/models"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=10,max=128"`
}

type sessionResponse struct {
	Session  *models.Session `json:"session"`
	Redirect string          `json:"redirect,omitempty"`
}

// Login handles credentials sign-in. On success the session cookie is
// set and the response carries the post-login redirect: the sanitized
// callbackUrl when present, the default landing page otherwise.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			respondError(w, http.StatusTooManyRequests, codeAccountLocked,
				"too many failed attempts, try again later", nil)
		case errors.Is(err, auth.ErrCredentialsDisabled):
			respondError(w, http.StatusNotImplemented, codeCredentialsDisabled,
				"credentials sign-in is not enabled", err)
		default:
			respondError(w, http.StatusUnauthorized, codeUnauthorized,
				"invalid email or password", nil)
		}
		return
	}

	h.issueSession(w, r, user, auth.TriggerSignIn)
}

// Register creates a credentials account with the USER role and signs
// the new user in. Role escalation happens later through the admin
// surface, never at registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "registration failed", err)
		return
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         req.Name,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		respondStoreError(w, err, "account")
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", user.ID.String()).Msg("account registered")
	h.issueSession(w, r, user, auth.TriggerSignIn)
}

// Logout clears the session cookie. Tokens are stateless, so the
// cookie removal is the whole operation.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearSessionCookie(w)
	respondData(w, http.StatusOK, map[string]string{"redirect": access.LoginPath})
}

// Session returns the current session, or 401 when unauthenticated.
// The auth API sits outside the gate's session plumbing, so the token
// is parsed here.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFromRequest(r)
	if session == nil {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "not signed in", nil)
		return
	}
	respondData(w, http.StatusOK, &sessionResponse{Session: session})
}

// RefreshSession reissues the session token with the user's current
// role, picking up administrative role changes without a new sign-in.
func (h *Handler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFromRequest(r)
	if session == nil {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "not signed in", nil)
		return
	}

	claims := &auth.TokenClaims{
		Name:    session.Name,
		Email:   session.Email,
		Role:    string(session.Role),
		IsOAuth: session.IsOAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: session.UserID,
		},
	}
	token, err := h.auth.IssueToken(r.Context(), claims, auth.TriggerUpdate)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "session refresh failed", err)
		return
	}
	h.auth.SetSessionCookie(w, token)

	refreshed, err := h.auth.SessionFromToken(token)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "session refresh failed", err)
		return
	}
	respondData(w, http.StatusOK, &sessionResponse{Session: refreshed})
}

// issueSession signs a token for the user, sets the cookie and writes
// the session response with the redirect target.
func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, user *models.User, trigger auth.TokenTrigger) {
	token, err := h.auth.IssueToken(r.Context(), auth.ClaimsFromUser(user), trigger)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "sign-in failed", err)
		return
	}
	h.auth.SetSessionCookie(w, token)

	session, err := h.auth.SessionFromToken(token)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "sign-in failed", err)
		return
	}

	respondData(w, http.StatusOK, &sessionResponse{
		Session:  session,
		Redirect: sanitizeCallback(r.URL.Query().Get("callbackUrl"), h.auth.DefaultLoginRedirect),
	})
}

// sanitizeCallback accepts only local absolute paths as post-login
// redirect targets, closing the open-redirect hole.
func sanitizeCallback(callback, fallback string) string {
	if callback == "" ||
		!strings.HasPrefix(callback, "/") ||
		strings.HasPrefix(callback, "//") ||
		strings.Contains(callback, "\\") {
		return fallback
	}
	return callback
}

// sessionFromRequest parses the session token off the request.
func (h *Handler) sessionFromRequest(r *http.Request) *models.Session {
	token := h.auth.TokenFromRequest(r)
	if token == "" {
		return nil
	}
	session, err := h.auth.SessionFromToken(token)
	if err != nil {
		return nil
	}
	return session
}

// --- Email verification and password reset ---
//
// Verification and reset travel as short-lived signed tokens with an
// explicit purpose claim, reusing the session token manager. Delivery
// (email) is out of scope; the token is logged for the operator.

const (
	purposeVerifyEmail   = "verify-email"
	purposeResetPassword = "reset-password"
)

type purposeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type verificationRequest struct {
	Token string `json:"token" validate:"required"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type newPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=10,max=128"`
}

// NewVerification redeems an email verification token.
func (h *Handler) NewVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, err := h.redeemPurposeToken(req.Token, purposeVerifyEmail)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "invalid or expired verification token", err)
		return
	}

	if err := h.db.MarkEmailVerified(r.Context(), userID); err != nil {
		respondStoreError(w, err, "account")
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "verified"})
}

// RequestPasswordReset issues a reset token for the account. The
// response is identical whether or not the email exists.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil && user.PasswordHash != "" {
		token, err := h.issuePurposeToken(user.ID.String(), purposeResetPassword, time.Hour)
		if err != nil {
			respondError(w, http.StatusInternalServerError, codeInternalError, "reset request failed", err)
			return
		}
		// Stands in for email delivery.
		logging.Ctx(r.Context()).Info().
			Str("user_id", user.ID.String()).
			Str("reset_token", token).
			Msg("password reset requested")
	}

	respondData(w, http.StatusOK, map[string]string{
		"status": "if the account exists, a reset link has been sent",
	})
}

// NewPassword redeems a reset token and sets the new password.
func (h *Handler) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req newPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, err := h.redeemPurposeToken(req.Token, purposeResetPassword)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "invalid or expired reset token", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "password update failed", err)
		return
	}
	if err := h.db.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		respondStoreError(w, err, "account")
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// issuePurposeToken signs a single-purpose token for a user.
func (h *Handler) issuePurposeToken(userID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := purposeClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(h.cfg.Auth.JWTSecret))
}

// redeemPurposeToken validates a single-purpose token and returns the
// subject user ID.
func (h *Handler) redeemPurposeToken(tokenString, purpose string) (string, error) {
	claims := &purposeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", auth.ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return "", auth.ErrInvalidToken
	}
	return claims.Subject, nil
}

// --- OAuth ---

// OAuthStart begins the authorization-code flow for a provider. State
// survives the redirect round-trip in the badger-backed store.
func (h *Handler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, err := h.auth.Provider(name)
	if err != nil {
		respondError(w, http.StatusNotFound, codeUnknownProvider, "unknown oauth provider", err)
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "oauth start failed", err)
		return
	}

	now := time.Now()
	err = h.auth.States.Store(r.Context(), state, &auth.StateData{
		Provider:    name,
		CallbackURL: sanitizeCallback(r.URL.Query().Get("callbackUrl"), h.auth.DefaultLoginRedirect),
		CreatedAt:   now,
		ExpiresAt:   now.Add(10 * time.Minute),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "oauth start failed", err)
		return
	}

	http.Redirect(w, r, provider.AuthURL(state), http.StatusFound)
}

// OAuthCallback completes the flow: redeem state, exchange the code,
// find or create the account, and sign the user in. Errors land on the
// auth error page rather than a raw error response, since the browser
// arrives here by provider redirect.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, err := h.auth.Provider(name)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("oauth callback for unconfigured provider")
		http.Redirect(w, r, access.AuthErrorPath, http.StatusFound)
		return
	}

	state, err := h.auth.States.Consume(r.Context(), r.URL.Query().Get("state"))
	if err != nil || state.Provider != name {
		logging.Ctx(r.Context()).Warn().Err(err).Str("provider", name).Msg("oauth state rejected")
		http.Redirect(w, r, access.AuthErrorPath, http.StatusFound)
		return
	}

	identity, err := provider.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("provider", name).Msg("oauth code exchange failed")
		http.Redirect(w, r, access.AuthErrorPath, http.StatusFound)
		return
	}

	user, err := h.findOrCreateOAuthUser(r, identity)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("provider", name).Msg("oauth account provisioning failed")
		http.Redirect(w, r, access.AuthErrorPath, http.StatusFound)
		return
	}

	token, err := h.auth.IssueToken(r.Context(), auth.ClaimsFromUser(user), auth.TriggerSignIn)
	if err != nil {
		http.Redirect(w, r, access.AuthErrorPath, http.StatusFound)
		return
	}
	h.auth.SetSessionCookie(w, token)

	http.Redirect(w, r, state.CallbackURL, http.StatusFound)
}

// findOrCreateOAuthUser maps a provider identity onto an account,
// provisioning a USER-role account on first sign-in.
func (h *Handler) findOrCreateOAuthUser(r *http.Request, identity *auth.OAuthIdentity) (*models.User, error) {
	if identity.Email == "" {
		return nil, errors.New("provider reported no email address")
	}
	email := strings.ToLower(identity.Email)

	user, err := h.db.GetUserByEmail(r.Context(), email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:   email,
		Name:    identity.Name,
		Role:    models.RoleUser,
		IsOAuth: true,
	}
	if identity.EmailVerified {
		now := time.Now().UTC()
		user.EmailVerifiedAt = &now
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		return nil, err
	}
	logging.Ctx(r.Context()).Info().Str("user_id", user.ID.String()).Msg("oauth account provisioned")
	return user, nil
}
