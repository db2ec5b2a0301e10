package handlers

import (
	"log/slog"
	"net/http"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// parseUUIDParam はURLパラメータをUUIDとして解釈します
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewAppError("INVALID_URL_PARAM", name+"の形式が正しくありません。", name, model.ErrInvalidInput)
	}
	return id, nil
}

// authContext は認証済みリクエストのテナントID・ユーザーID・ロールをまとめて取り出します
type authContext struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     model.Role
}

func getAuthContext(r *http.Request, logger *slog.Logger) (*authContext, error) {
	ctx := r.Context()
	tenantID, err := middleware.GetTenantIDFromContext(ctx)
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		return nil, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
	}
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		return nil, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
	}
	role, err := middleware.GetRoleFromContext(ctx)
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		return nil, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
	}
	return &authContext{TenantID: tenantID, UserID: userID, Role: role}, nil
}
