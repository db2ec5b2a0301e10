package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go_5_onboard_keep/internal/config"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuthMiddleware は Authorization ヘッダーの Bearer トークンを検証するミドルウェア。
// 検証に成功すると、ユーザーID・テナントID・ロールをリクエストコンテキストに格納します。
func JWTAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("JWT auth failed: Authorization header missing")
				appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーが必要です。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			// "Bearer {token}" の形式を検証
			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				logger.Warn("JWT auth failed: Invalid Authorization header format")
				appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーの形式が正しくありません。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}
			tokenString := headerParts[1]

			// 署名と有効期限(exp)の両方を検証する
			claims := &model.JWTCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWT.SecretKey), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("JWT auth failed: Invalid token", "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			subject, err := claims.GetSubject()
			if err != nil {
				logger.Warn("JWT auth failed: Subject (sub) claim missing", "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンにユーザー情報が含まれていません。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}
			userID, err := uuid.Parse(subject)
			if err != nil {
				logger.Warn("JWT auth failed: Invalid subject (sub) format", "subject", subject, "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンのユーザー情報が不正です。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}
			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				logger.Warn("JWT auth failed: Invalid tenant_id claim", "tenant_id", claims.TenantID, "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンのテナント情報が不正です。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}
			role := model.Role(claims.Role)
			if !role.Valid() {
				logger.Warn("JWT auth failed: Unknown role claim", "role", claims.Role)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンのロール情報が不正です。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			ctx = context.WithValue(ctx, model.TenantIDKey, tenantID)
			ctx = context.WithValue(ctx, model.RoleKey, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin はテナント管理者以上のロールを要求するミドルウェアです。
// ロール判定は閉じた列挙型(model.Role)に対するswitchで行います。
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		role, err := GetRoleFromContext(r.Context())
		if err != nil {
			webutil.HandleError(w, logger, err)
			return
		}

		switch role {
		case model.RoleTenantAdmin, model.RoleSuperAdmin:
			next.ServeHTTP(w, r)
		case model.RoleEmployee:
			logger.Warn("Role gate rejected request", "role", string(role))
			appErr := model.NewAppError("FORBIDDEN", "この操作には管理者権限が必要です。", "", model.ErrForbidden)
			webutil.HandleError(w, logger, appErr)
		default:
			logger.Warn("Role gate rejected request: unknown role", "role", string(role))
			appErr := model.NewAppError("FORBIDDEN", "この操作には管理者権限が必要です。", "", model.ErrForbidden)
			webutil.HandleError(w, logger, appErr)
		}
	})
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからユーザー情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}

func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.TenantIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからテナント情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}

func GetRoleFromContext(ctx context.Context) (model.Role, error) {
	value, ok := ctx.Value(model.RoleKey).(model.Role)
	if !ok {
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからロール情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}
