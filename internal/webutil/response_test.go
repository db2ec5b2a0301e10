// internal/webutil/response_test.go
package webutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_5_onboard_keep/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorDetail {
	t.Helper()
	var resp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHandleError(t *testing.T) {
	t.Run("正常系: AppErrorはコード・メッセージがそのまま返る", func(t *testing.T) {
		var logBuf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logBuf, nil))
		rec := httptest.NewRecorder()

		appErr := model.NewAppError("DUPLICATE_SLUG", "このスラッグは既に使用されています。", "slug", model.ErrConflict)
		HandleError(rec, logger, appErr)

		assert.Equal(t, http.StatusConflict, rec.Code)
		detail := decodeErrorResponse(t, rec)
		assert.Equal(t, "DUPLICATE_SLUG", detail.Code)
		assert.NotContains(t, logBuf.String(), "level=ERROR")
	})

	t.Run("正常系: 素のセンチネルは対応コードとWarnログになる", func(t *testing.T) {
		var logBuf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logBuf, nil))
		rec := httptest.NewRecorder()

		HandleError(rec, logger, model.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		detail := decodeErrorResponse(t, rec)
		assert.Equal(t, "NOT_FOUND", detail.Code)
		// 想定内のエラーなのでErrorではなくWarnで記録される
		assert.Contains(t, logBuf.String(), "level=WARN")
		assert.NotContains(t, logBuf.String(), "level=ERROR")
	})

	t.Run("正常系: 文字列が似ているだけではセンチネル扱いしない", func(t *testing.T) {
		var logBuf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logBuf, nil))
		rec := httptest.NewRecorder()

		HandleError(rec, logger, errors.New("repo: "+model.ErrForbidden.Error()))
		// 文字列一致では判定されない(errors.Isでの連鎖のみ)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("異常系: 未知のエラーは500とErrorログ", func(t *testing.T) {
		var logBuf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logBuf, nil))
		rec := httptest.NewRecorder()

		HandleError(rec, logger, errors.New("connection reset by peer"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		detail := decodeErrorResponse(t, rec)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", detail.Code)
		assert.True(t, strings.Contains(logBuf.String(), "level=ERROR"))
	})
}

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"NotFoundは404", model.ErrNotFound, http.StatusNotFound},
		{"InvalidInputは400", model.ErrInvalidInput, http.StatusBadRequest},
		{"Conflictは409", model.ErrConflict, http.StatusConflict},
		{"Forbiddenは403", model.ErrForbidden, http.StatusForbidden},
		{"TenantNotFoundは403", model.ErrTenantNotFound, http.StatusForbidden},
		{"AppErrorはラップ先で判定", model.NewAppError("X", "x", "", model.ErrNotFound), http.StatusNotFound},
		{"未知のエラーは500", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}
