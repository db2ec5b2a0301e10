// internal/middleware/auth_test.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go_5_onboard_keep/internal/config"
	"go_5_onboard_keep/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, userID, tenantID uuid.UUID, role model.Role, expiresAt time.Time) string {
	t.Helper()
	claims := model.JWTCustomClaims{
		TenantID: tenantID.String(),
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

// --- Test JWTAuthMiddleware ---
func TestJWTAuthMiddleware(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = testSecret

	userID := uuid.New()
	tenantID := uuid.New()

	// コンテキストに格納された値を記録する最奥のハンドラ
	var gotUserID, gotTenantID uuid.UUID
	var gotRole model.Role
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotUserID, err = GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		gotTenantID, err = GetTenantIDFromContext(r.Context())
		require.NoError(t, err)
		gotRole, err = GetRoleFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTAuthMiddleware(cfg)(next)

	t.Run("正常系: 有効なトークンでクレームがコンテキストに入る", func(t *testing.T) {
		token := signTestToken(t, userID, tenantID, model.RoleTenantAdmin, time.Now().Add(time.Hour))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, gotUserID)
		assert.Equal(t, tenantID, gotTenantID)
		assert.Equal(t, model.RoleTenantAdmin, gotRole)
	})

	t.Run("異常系: Authorizationヘッダーなし", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rec))
	})

	t.Run("異常系: Bearer形式でないヘッダー", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rec))
	})

	t.Run("異常系: 期限切れトークン", func(t *testing.T) {
		token := signTestToken(t, userID, tenantID, model.RoleEmployee, time.Now().Add(-time.Minute))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeErrorCode(t, rec))
	})

	t.Run("異常系: 署名鍵が異なるトークン", func(t *testing.T) {
		claims := model.JWTCustomClaims{
			TenantID: tenantID.String(),
			Role:     string(model.RoleEmployee),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeErrorCode(t, rec))
	})

	t.Run("異常系: 未知のロールクレーム", func(t *testing.T) {
		token := signTestToken(t, userID, tenantID, model.Role("owner"), time.Now().Add(time.Hour))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeErrorCode(t, rec))
	})
}

// --- Test RequireAdmin ---
func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(next)

	newRequestWithRole := func(role model.Role) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/flows", nil)
		ctx := context.WithValue(req.Context(), model.RoleKey, role)
		return req.WithContext(ctx)
	}

	t.Run("正常系: tenant_adminは通過", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequestWithRole(model.RoleTenantAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("正常系: super_adminは通過", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequestWithRole(model.RoleSuperAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("異常系: employeeは403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequestWithRole(model.RoleEmployee))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "FORBIDDEN", decodeErrorCode(t, rec))
	})

	t.Run("異常系: ロールがコンテキストにない場合は500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/flows", nil)
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
