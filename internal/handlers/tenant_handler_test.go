// internal/handlers/tenant_handler_test.go
package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go_5_onboard_keep/internal/handlers"
	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/service/mocks"
)

// newTenantRouter は本番と同じ構成(テナント解決ミドルウェア配下)でルートを組み立てます
func newTenantRouter(mockService *mocks.MockTenantService) *chi.Mux {
	handler := handlers.NewTenantHandler(mockService, nil)
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.TenantResolveMiddleware(mockService))
		r.Get("/api/v1/tenants/current", handler.GetCurrentTenant)
	})
	return router
}

func TestTenantHandler_GetCurrentTenant(t *testing.T) {
	tenant := &model.Tenant{
		TenantID: uuid.New(),
		Name:     "Acme株式会社",
		Slug:     "acme",
		IsActive: true,
	}

	t.Run("Success - X-Tenantヘッダーで解決", func(t *testing.T) {
		mockService := mocks.NewMockTenantService(t)
		mockService.On("ResolveTenant", mock.Anything, "acme").Return(tenant, nil).Once()
		mockService.On("GetTenant", mock.Anything, tenant.TenantID).Return(tenant, nil).Once()

		router := newTenantRouter(mockService)
		req := createRequest(t, "GET", "/api/v1/tenants/current", nil)
		req.Header.Set("X-Tenant", "acme")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got model.Tenant
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, tenant.TenantID, got.TenantID)
		assert.Equal(t, "acme", got.Slug)
	})

	t.Run("Success - Hostのサブドメインで解決", func(t *testing.T) {
		mockService := mocks.NewMockTenantService(t)
		mockService.On("ResolveTenant", mock.Anything, "acme").Return(tenant, nil).Once()
		mockService.On("GetTenant", mock.Anything, tenant.TenantID).Return(tenant, nil).Once()

		router := newTenantRouter(mockService)
		req := createRequest(t, "GET", "/api/v1/tenants/current", nil)
		req.Host = "acme.example.com"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Fail - 未知のテナント", func(t *testing.T) {
		mockService := mocks.NewMockTenantService(t)
		mockService.On("ResolveTenant", mock.Anything, "ghost").
			Return(nil, model.ErrTenantNotFound).Once()

		router := newTenantRouter(mockService)
		req := createRequest(t, "GET", "/api/v1/tenants/current", nil)
		req.Header.Set("X-Tenant", "ghost")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "TENANT_NOT_FOUND", decodeAPIError(t, rr).Code)
	})

	t.Run("Fail - テナント識別子なし", func(t *testing.T) {
		mockService := mocks.NewMockTenantService(t)

		router := newTenantRouter(mockService)
		req := createRequest(t, "GET", "/api/v1/tenants/current", nil)
		req.Host = "localhost"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "TENANT_REQUIRED", decodeAPIError(t, rr).Code)
	})
}
