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

// ProgressRepository インターフェース
type ProgressRepository interface {
	// CreateBatch はアサインメント作成時の進捗行を一括生成します。
	CreateBatch(ctx context.Context, tx *gorm.DB, records []*model.ModuleProgress) error
	FindByAssignmentAndModule(ctx context.Context, db *gorm.DB, assignmentID, moduleID uuid.UUID) (*model.ModuleProgress, error)
	FindByAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) ([]*model.ModuleProgress, error)
	// FindByModule はモジュール横断の進捗行を返します(分析用)。
	FindByModule(ctx context.Context, db *gorm.DB, moduleID uuid.UUID) ([]*model.ModuleProgress, error)
	CountByAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) (int64, error)
	CountCompletedByAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, updates map[string]interface{}) error
	DeleteByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) error
	DeleteByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) CreateBatch(ctx context.Context, tx *gorm.DB, records []*model.ModuleProgress) error {
	logger := middleware.GetLogger(ctx)
	if len(records) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Create(records)
	if result.Error != nil {
		logger.Error("Error creating progress records in DB",
			"error", result.Error,
			"count", len(records),
		)
		return fmt.Errorf("gormProgressRepository.CreateBatch: %w", result.Error)
	}
	return nil
}

func (r *gormProgressRepository) FindByAssignmentAndModule(ctx context.Context, db *gorm.DB, assignmentID, moduleID uuid.UUID) (*model.ModuleProgress, error) {
	logger := middleware.GetLogger(ctx)
	var progress model.ModuleProgress
	result := db.WithContext(ctx).
		Where("assignment_id = ? AND module_id = ?", assignmentID, moduleID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding progress in DB",
			"error", result.Error,
			"assignment_id", assignmentID.String(),
			"module_id", moduleID.String(),
		)
		return nil, fmt.Errorf("gormProgressRepository.FindByAssignmentAndModule: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) FindByAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) ([]*model.ModuleProgress, error) {
	logger := middleware.GetLogger(ctx)
	var records []*model.ModuleProgress
	result := db.WithContext(ctx).
		Preload("Module").
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC").
		Find(&records)
	if result.Error != nil {
		logger.Error("Error finding progress by assignment in DB",
			"error", result.Error,
			"assignment_id", assignmentID.String(),
		)
		return nil, fmt.Errorf("gormProgressRepository.FindByAssignment: %w", result.Error)
	}
	return records, nil
}

func (r *gormProgressRepository) FindByModule(ctx context.Context, db *gorm.DB, moduleID uuid.UUID) ([]*model.ModuleProgress, error) {
	logger := middleware.GetLogger(ctx)
	var records []*model.ModuleProgress
	result := db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Find(&records)
	if result.Error != nil {
		logger.Error("Error finding progress by module in DB",
			"error", result.Error,
			"module_id", moduleID.String(),
		)
		return nil, fmt.Errorf("gormProgressRepository.FindByModule: %w", result.Error)
	}
	return records, nil
}

func (r *gormProgressRepository) CountByAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.ModuleProgress{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gormProgressRepository.CountByAssignment: %w", err)
	}
	return count, nil
}

func (r *gormProgressRepository) CountCompletedByAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.ModuleProgress{}).
		Where("assignment_id = ? AND is_completed = ?", assignmentID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gormProgressRepository.CountCompletedByAssignment: %w", err)
	}
	return count, nil
}

func (r *gormProgressRepository) Update(ctx context.Context, tx *gorm.DB, progressID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.ModuleProgress{}).
		Where("progress_id = ?", progressID).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating progress in DB",
			"error", result.Error,
			"progress_id", progressID.String(),
		)
		return fmt.Errorf("gormProgressRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteByModule はモジュール削除に伴い進捗行を一括削除します(0件でもエラーにしない)。
func (r *gormProgressRepository) DeleteByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Delete(&model.ModuleProgress{})
	if result.Error != nil {
		logger.Error("Error deleting progress by module in DB",
			"error", result.Error,
			"module_id", moduleID.String(),
		)
		return fmt.Errorf("gormProgressRepository.DeleteByModule: %w", result.Error)
	}
	return nil
}

// DeleteByAssignment はアサインメント削除に伴い進捗行を一括削除します
func (r *gormProgressRepository) DeleteByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Delete(&model.ModuleProgress{})
	if result.Error != nil {
		logger.Error("Error deleting progress by assignment in DB",
			"error", result.Error,
			"assignment_id", assignmentID.String(),
		)
		return fmt.Errorf("gormProgressRepository.DeleteByAssignment: %w", result.Error)
	}
	return nil
}
