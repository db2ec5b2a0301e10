// internal/handlers/main_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go_5_onboard_keep/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testAuth はテスト用の認証情報(JWTミドルウェア通過後の状態を再現する)
type testAuth struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     model.Role
}

func newTestAuth(role model.Role) *testAuth {
	return &testAuth{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Role:     role,
	}
}

// authInjector は認証済みコンテキストを注入するテスト用ミドルウェア。
// auth が nil の場合は何も注入しない(未認証リクエストの再現)。
func authInjector(auth *testAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth != nil {
				ctx := context.WithValue(r.Context(), model.TenantIDKey, auth.TenantID)
				ctx = context.WithValue(ctx, model.UserIDKey, auth.UserID)
				ctx = context.WithValue(ctx, model.RoleKey, auth.Role)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// createRequest はJSONボディ付きのテストリクエストを作成します
func createRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
		reader = nil
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, url, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// decodeAPIError はエラーレスポンスのエラーコードを取り出します
func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) model.ErrorDetail {
	t.Helper()
	var resp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}
