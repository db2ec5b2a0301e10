package repository

import (
	"context"
	"errors"
	"fmt"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepository インターフェース
type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *model.ContentCategory) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, categoryID uuid.UUID) (*model.ContentCategory, error)
	FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) ([]*model.ContentCategory, error)
	Delete(ctx context.Context, tx *gorm.DB, tenantID, categoryID uuid.UUID) error
}

type gormCategoryRepository struct{}

func NewGormCategoryRepository() CategoryRepository {
	return &gormCategoryRepository{}
}

func (r *gormCategoryRepository) Create(ctx context.Context, tx *gorm.DB, category *model.ContentCategory) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(category)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn("Category slug already exists",
				"tenant_id", category.TenantID.String(),
				"slug", category.Slug,
			)
			return model.ErrConflict
		}
		logger.Error("Error creating category in DB",
			"error", result.Error,
			"slug", category.Slug,
		)
		return fmt.Errorf("gormCategoryRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormCategoryRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID, categoryID uuid.UUID) (*model.ContentCategory, error) {
	logger := middleware.GetLogger(ctx)
	var category model.ContentCategory
	result := db.WithContext(ctx).
		Where("category_id = ? AND tenant_id = ?", categoryID, tenantID).
		First(&category)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding category by ID in DB",
			"error", result.Error,
			"category_id", categoryID.String(),
		)
		return nil, fmt.Errorf("gormCategoryRepository.FindByID: %w", result.Error)
	}
	return &category, nil
}

func (r *gormCategoryRepository) FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) ([]*model.ContentCategory, error) {
	logger := middleware.GetLogger(ctx)
	var categories []*model.ContentCategory
	result := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&categories)
	if result.Error != nil {
		logger.Error("Error finding categories by tenant in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return nil, fmt.Errorf("gormCategoryRepository.FindByTenant: %w", result.Error)
	}
	return categories, nil
}

func (r *gormCategoryRepository) Delete(ctx context.Context, tx *gorm.DB, tenantID, categoryID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("category_id = ? AND tenant_id = ?", categoryID, tenantID).
		Delete(&model.ContentCategory{})
	if result.Error != nil {
		logger.Error("Error deleting category in DB",
			"error", result.Error,
			"category_id", categoryID.String(),
		)
		return fmt.Errorf("gormCategoryRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ContentBlockRepository インターフェース
type ContentBlockRepository interface {
	Create(ctx context.Context, tx *gorm.DB, block *model.ContentBlock) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, blockID uuid.UUID) (*model.ContentBlock, error)
	// FindByTenant はカテゴリ・検索語で絞り込んだ一覧を返します。
	FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, categoryID *uuid.UUID, search string) ([]*model.ContentBlock, error)
	Update(ctx context.Context, tx *gorm.DB, blockID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, tenantID, blockID uuid.UUID) error
}

type gormContentBlockRepository struct{}

func NewGormContentBlockRepository() ContentBlockRepository {
	return &gormContentBlockRepository{}
}

func (r *gormContentBlockRepository) Create(ctx context.Context, tx *gorm.DB, block *model.ContentBlock) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(block)
	if result.Error != nil {
		logger.Error("Error creating content block in DB",
			"error", result.Error,
			"title", block.Title,
		)
		return fmt.Errorf("gormContentBlockRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormContentBlockRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID, blockID uuid.UUID) (*model.ContentBlock, error) {
	logger := middleware.GetLogger(ctx)
	var block model.ContentBlock
	result := db.WithContext(ctx).
		Preload("Category").
		Where("block_id = ? AND tenant_id = ?", blockID, tenantID).
		First(&block)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding content block by ID in DB",
			"error", result.Error,
			"block_id", blockID.String(),
		)
		return nil, fmt.Errorf("gormContentBlockRepository.FindByID: %w", result.Error)
	}
	return &block, nil
}

func (r *gormContentBlockRepository) FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, categoryID *uuid.UUID, search string) ([]*model.ContentBlock, error) {
	logger := middleware.GetLogger(ctx)
	query := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR tags LIKE ?", pattern, pattern)
	}
	var blocks []*model.ContentBlock
	result := query.Order("created_at DESC").Find(&blocks)
	if result.Error != nil {
		logger.Error("Error finding content blocks by tenant in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return nil, fmt.Errorf("gormContentBlockRepository.FindByTenant: %w", result.Error)
	}
	return blocks, nil
}

func (r *gormContentBlockRepository) Update(ctx context.Context, tx *gorm.DB, blockID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.ContentBlock{}).
		Where("block_id = ?", blockID).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating content block in DB",
			"error", result.Error,
			"block_id", blockID.String(),
		)
		return fmt.Errorf("gormContentBlockRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormContentBlockRepository) Delete(ctx context.Context, tx *gorm.DB, tenantID, blockID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("block_id = ? AND tenant_id = ?", blockID, tenantID).
		Delete(&model.ContentBlock{})
	if result.Error != nil {
		logger.Error("Error deleting content block in DB",
			"error", result.Error,
			"block_id", blockID.String(),
		)
		return fmt.Errorf("gormContentBlockRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
