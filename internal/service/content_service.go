package service

import (
	"context"
	"errors"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentService はコンテンツライブラリ(カテゴリ+ブロック)を管理します
type ContentService interface {
	CreateCategory(ctx context.Context, tenantID uuid.UUID, req *model.CreateCategoryRequest) (*model.ContentCategory, error)
	ListCategories(ctx context.Context, tenantID uuid.UUID) ([]*model.ContentCategory, error)
	DeleteCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error

	CreateContentBlock(ctx context.Context, tenantID uuid.UUID, req *model.CreateContentBlockRequest) (*model.ContentBlock, error)
	GetContentBlock(ctx context.Context, tenantID, blockID uuid.UUID) (*model.ContentBlock, error)
	ListContentBlocks(ctx context.Context, tenantID uuid.UUID, categoryID *uuid.UUID, search string) ([]*model.ContentBlock, error)
	UpdateContentBlock(ctx context.Context, tenantID, blockID uuid.UUID, req *model.UpdateContentBlockRequest) (*model.ContentBlock, error)
	DeleteContentBlock(ctx context.Context, tenantID, blockID uuid.UUID) error
}

type contentService struct {
	db           *gorm.DB
	categoryRepo repository.CategoryRepository
	blockRepo    repository.ContentBlockRepository
}

func NewContentService(db *gorm.DB, categoryRepo repository.CategoryRepository, blockRepo repository.ContentBlockRepository) ContentService {
	return &contentService{
		db:           db,
		categoryRepo: categoryRepo,
		blockRepo:    blockRepo,
	}
}

func (s *contentService) CreateCategory(ctx context.Context, tenantID uuid.UUID, req *model.CreateCategoryRequest) (*model.ContentCategory, error) {
	logger := middleware.GetLogger(ctx)

	color := req.Color
	if color == "" {
		color = "#6B7280"
	}
	category := &model.ContentCategory{
		CategoryID:  uuid.New(),
		TenantID:    tenantID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       color,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.categoryRepo.Create(ctx, tx, category)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("DUPLICATE_SLUG", "このスラッグのカテゴリは既に存在します。", "slug", model.ErrConflict)
		}
		logger.Error("Failed to create category", "error", err)
		return nil, model.ErrInternalServer
	}

	logger.Info("Category created", "category_id", category.CategoryID, "tenant_id", tenantID)
	return category, nil
}

func (s *contentService) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]*model.ContentCategory, error) {
	categories, err := s.categoryRepo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list categories", "error", err)
		return nil, model.ErrInternalServer
	}
	return categories, nil
}

func (s *contentService) DeleteCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.categoryRepo.Delete(ctx, tx, tenantID, categoryID)
	})
}

func (s *contentService) CreateContentBlock(ctx context.Context, tenantID uuid.UUID, req *model.CreateContentBlockRequest) (*model.ContentBlock, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.ContentBlock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.CategoryID != nil {
			if _, err := s.categoryRepo.FindByID(ctx, tx, tenantID, *req.CategoryID); err != nil {
				return err
			}
		}
		block := &model.ContentBlock{
			BlockID:     uuid.New(),
			TenantID:    tenantID,
			CategoryID:  req.CategoryID,
			Title:       req.Title,
			Description: req.Description,
			ContentType: req.ContentType,
			ContentText: req.ContentText,
			ContentURL:  req.ContentURL,
			Metadata:    req.Metadata,
			Tags:        req.Tags,
			IsPublished: req.IsPublished,
		}
		if err := s.blockRepo.Create(ctx, tx, block); err != nil {
			return err
		}
		created = block
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("CATEGORY_NOT_FOUND", "指定されたカテゴリが見つかりません。", "category_id", model.ErrNotFound)
		}
		logger.Error("Failed to create content block", "error", err)
		return nil, model.ErrInternalServer
	}

	logger.Info("Content block created", "block_id", created.BlockID, "tenant_id", tenantID)
	return created, nil
}

func (s *contentService) GetContentBlock(ctx context.Context, tenantID, blockID uuid.UUID) (*model.ContentBlock, error) {
	return s.blockRepo.FindByID(ctx, s.db, tenantID, blockID)
}

func (s *contentService) ListContentBlocks(ctx context.Context, tenantID uuid.UUID, categoryID *uuid.UUID, search string) ([]*model.ContentBlock, error) {
	blocks, err := s.blockRepo.FindByTenant(ctx, s.db, tenantID, categoryID, search)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list content blocks", "error", err)
		return nil, model.ErrInternalServer
	}
	return blocks, nil
}

func (s *contentService) UpdateContentBlock(ctx context.Context, tenantID, blockID uuid.UUID, req *model.UpdateContentBlockRequest) (*model.ContentBlock, error) {
	logger := middleware.GetLogger(ctx)

	updates := make(map[string]interface{})
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ContentText != nil {
		updates["content_text"] = *req.ContentText
	}
	if req.ContentURL != nil {
		updates["content_url"] = *req.ContentURL
	}
	if req.Metadata != nil {
		updates["metadata"] = req.Metadata
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.blockRepo.FindByID(ctx, tx, tenantID, blockID); err != nil {
			return err
		}
		if req.CategoryID != nil {
			if _, err := s.categoryRepo.FindByID(ctx, tx, tenantID, *req.CategoryID); err != nil {
				return model.NewAppError("CATEGORY_NOT_FOUND", "指定されたカテゴリが見つかりません。", "category_id", model.ErrNotFound)
			}
		}
		return s.blockRepo.Update(ctx, tx, blockID, updates)
	})
	if err != nil {
		var appErr *model.AppError
		if errors.Is(err, model.ErrNotFound) || errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Failed to update content block", "error", err, "block_id", blockID.String())
		return nil, model.ErrInternalServer
	}

	return s.blockRepo.FindByID(ctx, s.db, tenantID, blockID)
}

func (s *contentService) DeleteContentBlock(ctx context.Context, tenantID, blockID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.blockRepo.Delete(ctx, tx, tenantID, blockID)
	})
}
