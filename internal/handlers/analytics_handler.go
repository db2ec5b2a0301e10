package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/service"
	"go_5_onboard_keep/internal/webutil"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  *slog.Logger
}

func NewAnalyticsHandler(s service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		service: s,
		logger:  logger,
	}
}

// GetDashboardOverview はテナント全体のダッシュボード指標を返すハンドラ(管理者専用)
func (h *AnalyticsHandler) GetDashboardOverview(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetDashboardOverview"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	overview, err := h.service.GetDashboardOverview(r.Context(), auth.TenantID)
	if err != nil {
		logger.Error("Error getting dashboard overview from service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, overview, logger)
}

// GetFlowAnalytics は1フロー分の分析指標を返すハンドラ(管理者専用)
func (h *AnalyticsHandler) GetFlowAnalytics(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetFlowAnalytics"))

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

	analytics, err := h.service.GetFlowAnalytics(r.Context(), auth.TenantID, flowID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Flow not found in service")
		} else {
			logger.Error("Error getting flow analytics from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, analytics, logger)
}

// GetAllFlowsAnalytics は全フローの分析指標を返すハンドラ(管理者専用)
func (h *AnalyticsHandler) GetAllFlowsAnalytics(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetAllFlowsAnalytics"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	analytics, err := h.service.GetAllFlowsAnalytics(r.Context(), auth.TenantID)
	if err != nil {
		logger.Error("Error getting all flows analytics from service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if analytics == nil {
		analytics = []*model.FlowAnalytics{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, analytics, logger)
}

// GetCompletionTrends は日次の完了/新規アサイン数の時系列を返すハンドラ(管理者専用)。
// ?start=YYYY-MM-DD&end=YYYY-MM-DD。省略時は直近30日。
func (h *AnalyticsHandler) GetCompletionTrends(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCompletionTrends"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now
	query := r.URL.Query()
	if v := query.Get("start"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			appErr := model.NewAppError("INVALID_QUERY_PARAM", "startはYYYY-MM-DD形式で指定してください。", "start", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		start = parsed
	}
	if v := query.Get("end"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			appErr := model.NewAppError("INVALID_QUERY_PARAM", "endはYYYY-MM-DD形式で指定してください。", "end", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		end = parsed
	}

	trends, err := h.service.GetCompletionTrends(r.Context(), auth.TenantID, start, end)
	if err != nil {
		logger.Error("Error getting completion trends from service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, trends, logger)
}

// GetUserProgressReport はユーザー単位の進捗レポートを返すハンドラ(管理者専用)
func (h *AnalyticsHandler) GetUserProgressReport(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetUserProgressReport"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	report, err := h.service.GetUserProgressReport(r.Context(), auth.TenantID, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("User not found in service")
		} else {
			logger.Error("Error getting user progress report from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, report, logger)
}
