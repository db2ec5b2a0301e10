package middleware

import (
	"context"
	"net/http"
	"strings"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/webutil"
)

// TenantResolver は識別子(UUID・slug・サブドメイン)からテナントを解決します。
// 実体は service.TenantService が提供します。
type TenantResolver interface {
	ResolveTenant(ctx context.Context, identifier string) (*model.Tenant, error)
}

// TenantResolveMiddleware は X-Tenant ヘッダーまたは Host のサブドメインから
// テナントを解決し、コンテキストに格納します(認証前の公開エンドポイント用)。
// 非アクティブ・削除済みテナントは解決されません。
func TenantResolveMiddleware(resolver TenantResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			identifier := r.Header.Get("X-Tenant")
			if identifier == "" {
				// "acme.example.com" -> "acme"
				host := r.Host
				if idx := strings.Index(host, ":"); idx >= 0 {
					host = host[:idx]
				}
				if parts := strings.SplitN(host, ".", 2); len(parts) == 2 {
					identifier = parts[0]
				}
			}

			if identifier == "" {
				logger.Warn("Tenant resolution failed: no identifier in request")
				appErr := model.NewAppError("TENANT_REQUIRED", "テナントを特定できませんでした。", "", model.ErrTenantNotFound)
				webutil.HandleError(w, logger, appErr)
				return
			}

			tenant, err := resolver.ResolveTenant(r.Context(), identifier)
			if err != nil {
				logger.Warn("Tenant resolution failed", "identifier", identifier, "error", err)
				appErr := model.NewAppError("TENANT_NOT_FOUND", "テナントが見つかりません。", "", model.ErrTenantNotFound)
				webutil.HandleError(w, logger, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), model.TenantIDKey, tenant.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
