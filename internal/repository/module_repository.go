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

// ModuleRepository インターフェース
type ModuleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, module *model.Module) error
	FindByID(ctx context.Context, db *gorm.DB, moduleID uuid.UUID) (*model.Module, error)
	FindByFlow(ctx context.Context, db *gorm.DB, flowID uuid.UUID) ([]*model.Module, error)
	Update(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) error
}

type gormModuleRepository struct{}

func NewGormModuleRepository() ModuleRepository {
	return &gormModuleRepository{}
}

func (r *gormModuleRepository) Create(ctx context.Context, tx *gorm.DB, module *model.Module) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(module)
	if result.Error != nil {
		logger.Error("Error creating module in DB",
			"error", result.Error,
			"flow_id", module.FlowID.String(),
			"title", module.Title,
		)
		return fmt.Errorf("gormModuleRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormModuleRepository) FindByID(ctx context.Context, db *gorm.DB, moduleID uuid.UUID) (*model.Module, error) {
	logger := middleware.GetLogger(ctx)
	var module model.Module
	result := db.WithContext(ctx).Where("module_id = ?", moduleID).First(&module)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding module by ID in DB",
			"error", result.Error,
			"module_id", moduleID.String(),
		)
		return nil, fmt.Errorf("gormModuleRepository.FindByID: %w", result.Error)
	}
	return &module, nil
}

func (r *gormModuleRepository) FindByFlow(ctx context.Context, db *gorm.DB, flowID uuid.UUID) ([]*model.Module, error) {
	logger := middleware.GetLogger(ctx)
	var modules []*model.Module
	result := db.WithContext(ctx).
		Where("flow_id = ?", flowID).
		Order("display_order ASC, created_at ASC").
		Find(&modules)
	if result.Error != nil {
		logger.Error("Error finding modules by flow in DB",
			"error", result.Error,
			"flow_id", flowID.String(),
		)
		return nil, fmt.Errorf("gormModuleRepository.FindByFlow: %w", result.Error)
	}
	return modules, nil
}

func (r *gormModuleRepository) Update(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Module{}).Where("module_id = ?", moduleID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating module in DB",
			"error", result.Error,
			"module_id", moduleID.String(),
		)
		return fmt.Errorf("gormModuleRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete はモジュールを物理削除します。進捗行は呼び出し側(サービス層のトランザクション)
// で同時に削除すること。
func (r *gormModuleRepository) Delete(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Delete(&model.Module{}, "module_id = ?", moduleID)
	if result.Error != nil {
		logger.Error("Error deleting module in DB",
			"error", result.Error,
			"module_id", moduleID.String(),
		)
		return fmt.Errorf("gormModuleRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
