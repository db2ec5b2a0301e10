package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/service"
	"go_5_onboard_keep/internal/webutil"

	"github.com/google/uuid"
)

type ContentHandler struct {
	service service.ContentService
	logger  *slog.Logger
}

func NewContentHandler(s service.ContentService, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{
		service: s,
		logger:  logger,
	}
}

// PostCategory はコンテンツカテゴリを作成するハンドラ(管理者専用)
func (h *ContentHandler) PostCategory(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostCategory"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	var req model.CreateCategoryRequest
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

	category, err := h.service.CreateCategory(r.Context(), auth.TenantID, &req)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			logger.Info("Category slug conflict", slog.String("slug", req.Slug))
		} else {
			logger.Error("Error creating category in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Category created successfully", slog.String("category_id", category.CategoryID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, category, logger)
}

// GetCategories はカテゴリ一覧を返すハンドラ
func (h *ContentHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCategories"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	categories, err := h.service.ListCategories(r.Context(), auth.TenantID)
	if err != nil {
		logger.Error("Error listing categories in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if categories == nil {
		categories = []*model.ContentCategory{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, categories, logger)
}

// DeleteCategory はカテゴリを削除するハンドラ(管理者専用)
func (h *ContentHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteCategory"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	categoryID, err := parseUUIDParam(r, "category_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("category_id", categoryID.String()))

	if err := h.service.DeleteCategory(r.Context(), auth.TenantID, categoryID); err != nil {
		logger.Error("Error deleting category in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Category deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// PostContentBlock はコンテンツブロックを作成するハンドラ(管理者専用)
func (h *ContentHandler) PostContentBlock(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostContentBlock"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	var req model.CreateContentBlockRequest
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

	block, err := h.service.CreateContentBlock(r.Context(), auth.TenantID, &req)
	if err != nil {
		logger.Error("Error creating content block in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Content block created successfully", slog.String("block_id", block.BlockID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, block, logger)
}

// GetContentBlocks はコンテンツブロック一覧を返すハンドラ。
// ?category_id=... と ?search=... で絞り込めます。
func (h *ContentHandler) GetContentBlocks(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetContentBlocks"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_id", auth.TenantID.String()))

	var categoryID *uuid.UUID
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			appErr := model.NewAppError("INVALID_QUERY_PARAM", "category_idの形式が正しくありません。", "category_id", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		categoryID = &id
	}
	search := r.URL.Query().Get("search")

	blocks, err := h.service.ListContentBlocks(r.Context(), auth.TenantID, categoryID, search)
	if err != nil {
		logger.Error("Error listing content blocks in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if blocks == nil {
		blocks = []*model.ContentBlock{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, blocks, logger)
}

// GetContentBlock は特定のコンテンツブロックを取得するハンドラ
func (h *ContentHandler) GetContentBlock(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetContentBlock"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	blockID, err := parseUUIDParam(r, "block_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("block_id", blockID.String()))

	block, err := h.service.GetContentBlock(r.Context(), auth.TenantID, blockID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Content block not found in service")
		} else {
			logger.Error("Error getting content block from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, block, logger)
}

// PatchContentBlock はコンテンツブロックを部分更新するハンドラ(管理者専用)
func (h *ContentHandler) PatchContentBlock(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchContentBlock"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	blockID, err := parseUUIDParam(r, "block_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("block_id", blockID.String()))

	var req model.UpdateContentBlockRequest
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

	block, err := h.service.UpdateContentBlock(r.Context(), auth.TenantID, blockID, &req)
	if err != nil {
		logger.Error("Error updating content block in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Content block updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, block, logger)
}

// DeleteContentBlock はコンテンツブロックを論理削除するハンドラ(管理者専用)
func (h *ContentHandler) DeleteContentBlock(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteContentBlock"))

	auth, err := getAuthContext(r, logger)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	blockID, err := parseUUIDParam(r, "block_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("block_id", blockID.String()))

	if err := h.service.DeleteContentBlock(r.Context(), auth.TenantID, blockID); err != nil {
		logger.Error("Error deleting content block in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Content block deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
