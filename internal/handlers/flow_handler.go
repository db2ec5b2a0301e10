package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/service"
	"go_5_onboard_keep/internal/webutil"
)

type FlowHandler struct {
	service service.FlowService
	logger  *slog.Logger
}

func NewFlowHandler(s service.FlowService, logger *slog.Logger) *FlowHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlowHandler{
		service: s,
		logger:  logger,
	}
}

// PostFlow は新しいフローを作成するハンドラ(管理者専用)
func (h *FlowHandler) PostFlow(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostFlow"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	var req model.CreateFlowRequest
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

	flow, err := h.service.CreateFlow(r.Context(), auth.TenantID, &req)
	if err != nil {
		logger.Error("Error creating flow in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flow created successfully", slog.String("flow_id", flow.FlowID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, flow, logger)
}

// GetFlows はフロー一覧を返すハンドラ。?include_inactive=true で非アクティブも含める。
func (h *FlowHandler) GetFlows(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetFlows"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	flows, err := h.service.ListFlows(r.Context(), auth.TenantID, includeInactive)
	if err != nil {
		logger.Error("Error listing flows in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if flows == nil {
		flows = []*model.Flow{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, flows, logger)
}

// GetFlow は特定フローをモジュール付きで取得するハンドラ
func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetFlow"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	flowID, err := parseUUIDParam(r, "flow_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("flow_id", flowID.String()))

	flow, err := h.service.GetFlow(r.Context(), auth.TenantID, flowID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Flow not found in service")
		} else {
			logger.Error("Error getting flow from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, flow, logger)
}

// PatchFlow はフローを部分更新するハンドラ(管理者専用)
func (h *FlowHandler) PatchFlow(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchFlow"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	flowID, err := parseUUIDParam(r, "flow_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("flow_id", flowID.String()))

	var req model.UpdateFlowRequest
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

	flow, err := h.service.UpdateFlow(r.Context(), auth.TenantID, flowID, &req)
	if err != nil {
		logger.Error("Error updating flow in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flow updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, flow, logger)
}

// DeleteFlow はフローを論理削除するハンドラ(管理者専用)
func (h *FlowHandler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteFlow"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	flowID, err := parseUUIDParam(r, "flow_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("flow_id", flowID.String()))

	if err := h.service.DeleteFlow(r.Context(), auth.TenantID, flowID); err != nil {
		logger.Error("Error deleting flow in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flow deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// CloneFlow はフローを複製するハンドラ(管理者専用)。複製は非アクティブ状態で作成されます。
func (h *FlowHandler) CloneFlow(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CloneFlow"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	flowID, err := parseUUIDParam(r, "flow_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("flow_id", flowID.String()))

	var req model.CloneFlowRequest
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

	clone, err := h.service.CloneFlow(r.Context(), auth.TenantID, flowID, &req)
	if err != nil {
		logger.Error("Error cloning flow in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flow cloned successfully", slog.String("new_flow_id", clone.FlowID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, clone, logger)
}

// PostModule はフローにモジュールを追加するハンドラ(管理者専用)
func (h *FlowHandler) PostModule(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostModule"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	flowID, err := parseUUIDParam(r, "flow_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("flow_id", flowID.String()))

	var req model.CreateModuleRequest
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

	module, err := h.service.CreateModule(r.Context(), auth.TenantID, flowID, &req)
	if err != nil {
		logger.Error("Error creating module in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Module created successfully", slog.String("module_id", module.ModuleID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, module, logger)
}

// PatchModule はモジュールを部分更新するハンドラ(管理者専用)
func (h *FlowHandler) PatchModule(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchModule"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	flowID, err := parseUUIDParam(r, "flow_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	moduleID, err := parseUUIDParam(r, "module_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("module_id", moduleID.String()))

	var req model.UpdateModuleRequest
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

	module, err := h.service.UpdateModule(r.Context(), auth.TenantID, flowID, moduleID, &req)
	if err != nil {
		logger.Error("Error updating module in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Module updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, module, logger)
}

// DeleteModule はモジュールを物理削除するハンドラ(管理者専用)
func (h *FlowHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteModule"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	flowID, err := parseUUIDParam(r, "flow_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	moduleID, err := parseUUIDParam(r, "module_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("module_id", moduleID.String()))

	if err := h.service.DeleteModule(r.Context(), auth.TenantID, flowID, moduleID); err != nil {
		logger.Error("Error deleting module in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Module deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// PutModuleOrder はフロー内モジュールの並び順を一括更新するハンドラ(管理者専用)
func (h *FlowHandler) PutModuleOrder(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutModuleOrder"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	flowID, err := parseUUIDParam(r, "flow_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("flow_id", flowID.String()))

	var req model.ReorderModulesRequest
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

	modules, err := h.service.ReorderModules(r.Context(), auth.TenantID, flowID, &req)
	if err != nil {
		logger.Error("Error reordering modules in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Modules reordered successfully")
	webutil.RespondWithJSON(w, http.StatusOK, modules, logger)
}
