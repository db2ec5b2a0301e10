package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/service"
	"go_5_onboard_keep/internal/webutil"
)

type NotificationHandler struct {
	service service.NotificationService
	logger  *slog.Logger
}

func NewNotificationHandler(s service.NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		service: s,
		logger:  logger,
	}
}

// GetEmailLogs はメール送信ログの一覧を返すハンドラ(管理者専用)。
// ?email_type=...&is_sent=true&page=1&page_size=20 で絞り込めます。
func (h *NotificationHandler) GetEmailLogs(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetEmailLogs"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	filter := &model.EmailLogFilter{}
	q := r.URL.Query()
	if v := q.Get("email_type"); v != "" {
		filter.EmailType = &v
	}
	if v := q.Get("is_sent"); v != "" {
		isSent, err := strconv.ParseBool(v)
		if err != nil {
			appErr := model.NewAppError("INVALID_QUERY_PARAM", "is_sentの形式が正しくありません。", "is_sent", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		filter.IsSent = &isSent
	}
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			filter.Page = page
		}
	}
	if v := q.Get("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			filter.PageSize = size
		}
	}

	list, err := h.service.ListEmailLogs(r.Context(), auth.TenantID, filter)
	if err != nil {
		logger.Error("Error listing email logs in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, list, logger)
}

// GetEmailStats はテナントのメール送信統計を返すハンドラ(管理者専用)
func (h *NotificationHandler) GetEmailStats(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetEmailStats"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	stats, err := h.service.GetEmailStats(r.Context(), auth.TenantID)
	if err != nil {
		logger.Error("Error getting email stats in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, stats, logger)
}

// PostRetryEmail は送信失敗したメールを再送するハンドラ(管理者専用)
func (h *NotificationHandler) PostRetryEmail(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostRetryEmail"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logID, err := parseUUIDParam(r, "log_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("log_id", logID.String()))

	entry, err := h.service.RetryEmail(r.Context(), auth.TenantID, logID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Email log not found in service")
		} else {
			logger.Error("Error retrying email in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Email retried", slog.Bool("is_sent", entry.IsSent))
	webutil.RespondWithJSON(w, http.StatusOK, entry, logger)
}
