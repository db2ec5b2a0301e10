package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/service"
	"go_5_onboard_keep/internal/webutil"

	"github.com/google/uuid"
)

type AssignmentHandler struct {
	service service.AssignmentService
	logger  *slog.Logger
}

func NewAssignmentHandler(s service.AssignmentService, logger *slog.Logger) *AssignmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentHandler{
		service: s,
		logger:  logger,
	}
}

// PostAssignment はフローをユーザーに割り当てるハンドラ(管理者専用)
func (h *AssignmentHandler) PostAssignment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostAssignment"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	var req model.CreateAssignmentRequest
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

	assignedBy := auth.UserID
	assignment, err := h.service.CreateAssignment(r.Context(), auth.TenantID, &assignedBy, &req)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			logger.Info("Assignment conflict", slog.String("flow_id", req.FlowID.String()), slog.String("user_id", req.UserID.String()))
		} else {
			logger.Error("Error creating assignment in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Assignment created successfully", slog.String("assignment_id", assignment.AssignmentID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, assignment, logger)
}

// PostBulkAssign は複数ユーザーへの一括アサインを行うハンドラ(管理者専用)。
// 割り当て済みのユーザーはスキップされます。
func (h *AssignmentHandler) PostBulkAssign(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostBulkAssign"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	var req model.BulkAssignRequest
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

	assignedBy := auth.UserID
	created, err := h.service.BulkAssign(r.Context(), auth.TenantID, &assignedBy, &req)
	if err != nil {
		logger.Error("Error bulk assigning in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if created == nil {
		created = []*model.Assignment{}
	}
	logger.Info("Bulk assign finished", slog.Int("created", len(created)))
	webutil.RespondWithJSON(w, http.StatusCreated, created, logger)
}

// GetAssignments はテナントのアサインメント一覧を返すハンドラ(管理者専用)。
// status / flow_id / user_id / page / page_size で絞り込めます。
func (h *AssignmentHandler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetAssignments"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	filter := &model.AssignmentFilter{}
	query := r.URL.Query()
	if v := query.Get("status"); v != "" {
		status := model.AssignmentStatus(v)
		filter.Status = &status
	}
	if v := query.Get("flow_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			appErr := model.NewAppError("INVALID_QUERY_PARAM", "flow_idの形式が正しくありません。", "flow_id", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		filter.FlowID = &id
	}
	if v := query.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			appErr := model.NewAppError("INVALID_QUERY_PARAM", "user_idの形式が正しくありません。", "user_id", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		filter.UserID = &id
	}
	if v := query.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			filter.Page = page
		}
	}
	if v := query.Get("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			filter.PageSize = size
		}
	}

	assignments, total, err := h.service.ListAssignments(r.Context(), auth.TenantID, filter)
	if err != nil {
		logger.Error("Error listing assignments in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if assignments == nil {
		assignments = []*model.Assignment{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": assignments,
		"total": total,
	}, logger)
}

// GetAssignment は特定アサインメントを進捗付きで取得するハンドラ
func (h *AssignmentHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetAssignment"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	assignmentID, err := parseUUIDParam(r, "assignment_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("assignment_id", assignmentID.String()))

	assignment, err := h.service.GetAssignment(r.Context(), auth.TenantID, assignmentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Assignment not found in service")
		} else {
			logger.Error("Error getting assignment from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, assignment, logger)
}

// DeleteAssignment はアサインメントと進捗行を削除するハンドラ(管理者専用)
func (h *AssignmentHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteAssignment"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	assignmentID, err := parseUUIDParam(r, "assignment_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("assignment_id", assignmentID.String()))

	if err := h.service.DeleteAssignment(r.Context(), auth.TenantID, assignmentID); err != nil {
		logger.Error("Error deleting assignment in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Assignment deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// PostCompleteModule はモジュールを完了状態にするハンドラ。
// 自分のアサインメントの進捗しか更新できません。
func (h *AssignmentHandler) PostCompleteModule(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostCompleteModule"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	assignmentID, err := parseUUIDParam(r, "assignment_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	moduleID, err := parseUUIDParam(r, "module_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(
		slog.String("assignment_id", assignmentID.String()),
		slog.String("module_id", moduleID.String()),
	)

	// ボディは省略可能
	var req model.CompleteModuleRequest
	if r.ContentLength > 0 {
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
	}

	progress, err := h.service.CompleteModule(r.Context(), auth.TenantID, assignmentID, moduleID, auth.UserID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Module completed successfully")
	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

// PostSubmitQuiz はクイズ回答を採点するハンドラ。不合格でも200で採点結果を返します。
func (h *AssignmentHandler) PostSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSubmitQuiz"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	assignmentID, err := parseUUIDParam(r, "assignment_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	moduleID, err := parseUUIDParam(r, "module_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(
		slog.String("assignment_id", assignmentID.String()),
		slog.String("module_id", moduleID.String()),
	)

	var req model.SubmitQuizRequest
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

	result, err := h.service.SubmitQuiz(r.Context(), auth.TenantID, assignmentID, moduleID, auth.UserID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Quiz graded", slog.Int("score", result.Score), slog.Bool("passed", result.Passed))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

// GetMyDashboard は認証済みユーザー自身のダッシュボードを返すハンドラ
func (h *AssignmentHandler) GetMyDashboard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMyDashboard"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("user_id", auth.UserID.String()))

	dashboard, err := h.service.GetEmployeeDashboard(r.Context(), auth.TenantID, auth.UserID)
	if err != nil {
		logger.Error("Error getting dashboard from service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, dashboard, logger)
}
