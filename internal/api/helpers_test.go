// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/models"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func TestRespondStoreError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", database.ErrNotFound, http.StatusNotFound, codeNotFound},
		{"duplicate", database.ErrDuplicate, http.StatusConflict, codeConflict},
		{"wrapped not found", errors.Join(errors.New("ctx"), database.ErrNotFound), http.StatusNotFound, codeNotFound},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError, codeDatabaseError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondStoreError(rec, tc.err, "project")
			assert.Equal(t, tc.wantStatus, rec.Code)

			resp := decodeEnvelope(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestRespondErrorNeverLeaksCause(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, http.StatusInternalServerError, codeInternalError,
		"something went wrong", errors.New("secret internal detail"))

	assert.NotContains(t, rec.Body.String(), "secret internal detail")
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "something went wrong", resp.Error.Message)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.dev"}`))
		rec := httptest.NewRecorder()
		var p payload
		require.True(t, decodeJSON(rec, req, &p))
		assert.Equal(t, "a@b.dev", p.Email)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		rec := httptest.NewRecorder()
		var p payload
		assert.False(t, decodeJSON(rec, req, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeBadRequest, decodeEnvelope(t, rec).Error.Code)
	})

	t.Run("validation failure carries field details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"not-an-email"}`))
		rec := httptest.NewRecorder()
		var p payload
		assert.False(t, decodeJSON(rec, req, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeEnvelope(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.Details)
	})
}

func TestPaginationClamping(t *testing.T) {
	h := &Handler{cfg: &config.Config{
		API: config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}}

	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"explicit", "limit=5&offset=10", 5, 10},
		{"limit capped", "limit=5000", 100, 0},
		{"zero limit falls back", "limit=0", 20, 0},
		{"negative offset clamped", "offset=-3", 20, 0},
		{"non-numeric ignored", "limit=abc&offset=xyz", 20, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
			limit, offset := h.pagination(req)
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
		})
	}
}
