package handlers

import (
	"log/slog"
	"net/http"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/service"
	"go_5_onboard_keep/internal/webutil"
)

type AuthHandler struct {
	service service.UserService
	logger  *slog.Logger
}

func NewAuthHandler(s service.UserService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		service: s,
		logger:  logger,
	}
}

// Login はメールアドレスとパスワードを検証してJWTを発行するハンドラ
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Login"))

	var req model.LoginRequest
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

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Login succeeded")
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}
