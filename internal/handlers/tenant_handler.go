package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/service"
	"go_5_onboard_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type TenantHandler struct {
	service service.TenantService
	logger  *slog.Logger
}

func NewTenantHandler(s service.TenantService, logger *slog.Logger) *TenantHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantHandler{
		service: s,
		logger:  logger,
	}
}

// PostTenant は新しいテナントを作成するハンドラ
func (h *TenantHandler) PostTenant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostTenant"))

	var req model.CreateTenantRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}

	tenant, err := h.service.CreateTenant(r.Context(), &req)
	if err != nil {
		logger.Error("Error creating tenant in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Tenant created successfully", slog.String("tenant_id", tenant.TenantID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, tenant, logger)
}

// ResolveTenant はUUID・slug・サブドメインのいずれかでテナントを解決するハンドラ
func (h *TenantHandler) ResolveTenant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ResolveTenant"))

	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		appErr := model.NewAppError("INVALID_URL_PARAM", "テナント識別子が必要です。", "identifier", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	tenant, err := h.service.ResolveTenant(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, model.ErrTenantNotFound) {
			logger.Info("Tenant not resolved", slog.String("identifier", identifier))
		} else {
			logger.Error("Error resolving tenant in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	resp := &model.TenantResponse{
		TenantID:  tenant.TenantID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		Plan:      tenant.Plan,
		IsActive:  tenant.IsActive,
		CreatedAt: tenant.CreatedAt,
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// GetTenant は認証済みユーザー自身のテナント情報を返すハンドラ
func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetTenant"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	tenant, err := h.service.GetTenant(r.Context(), auth.TenantID)
	if err != nil {
		logger.Error("Error getting tenant from service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, tenant, logger)
}

// PatchTenant はテナント設定を部分更新するハンドラ(管理者専用)
func (h *TenantHandler) PatchTenant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchTenant"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	var req model.UpdateTenantRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}

	tenant, err := h.service.UpdateTenant(r.Context(), auth.TenantID, &req)
	if err != nil {
		logger.Error("Error updating tenant in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Tenant updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, tenant, logger)
}

// GetCurrentTenant はサブドメインまたは X-Tenant ヘッダーで解決されたテナントを
// 返すハンドラ(TenantResolveMiddleware 配下の公開エンドポイント)
func (h *TenantHandler) GetCurrentTenant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCurrentTenant"))

	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Tenant not resolved for request", slog.String("error", err.Error()))
		appErr := model.NewAppError("TENANT_REQUIRED", "テナントを特定できませんでした。", "", model.ErrTenantNotFound)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("tenant_id", tenantID.String()))

	tenant, err := h.service.GetTenant(r.Context(), tenantID)
	if err != nil {
		logger.Error("Error getting tenant from service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, tenant, logger)
}

// DeleteTenant はテナントを論理削除するハンドラ(管理者専用)
func (h *TenantHandler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteTenant"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	if err := h.service.DeleteTenant(r.Context(), auth.TenantID); err != nil {
		logger.Error("Error deleting tenant in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Tenant deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// GetTenantStats はテナントの利用状況サマリを返すハンドラ(管理者専用)
func (h *TenantHandler) GetTenantStats(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetTenantStats"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	stats, err := h.service.GetTenantStats(r.Context(), auth.TenantID)
	if err != nil {
		logger.Error("Error getting tenant stats from service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, stats, logger)
}
