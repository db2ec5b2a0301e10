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

// FlowRepository インターフェース
type FlowRepository interface {
	Create(ctx context.Context, tx *gorm.DB, flow *model.Flow) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, flowID uuid.UUID) (*model.Flow, error)
	FindByIDWithModules(ctx context.Context, db *gorm.DB, tenantID, flowID uuid.UUID) (*model.Flow, error)
	FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, includeInactive bool) ([]*model.Flow, error)
	CountActiveByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, tenantID, flowID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, tenantID, flowID uuid.UUID) error
}

type gormFlowRepository struct{}

func NewGormFlowRepository() FlowRepository {
	return &gormFlowRepository{}
}

func (r *gormFlowRepository) Create(ctx context.Context, tx *gorm.DB, flow *model.Flow) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(flow)
	if result.Error != nil {
		logger.Error("Error creating flow in DB",
			"error", result.Error,
			"tenant_id", flow.TenantID.String(),
			"title", flow.Title,
		)
		return fmt.Errorf("gormFlowRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormFlowRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID, flowID uuid.UUID) (*model.Flow, error) {
	logger := middleware.GetLogger(ctx)
	var flow model.Flow
	result := db.WithContext(ctx).Where("tenant_id = ? AND flow_id = ?", tenantID, flowID).First(&flow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding flow by ID in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
			"flow_id", flowID.String(),
		)
		return nil, fmt.Errorf("gormFlowRepository.FindByID: %w", result.Error)
	}
	return &flow, nil
}

func (r *gormFlowRepository) FindByIDWithModules(ctx context.Context, db *gorm.DB, tenantID, flowID uuid.UUID) (*model.Flow, error) {
	logger := middleware.GetLogger(ctx)
	var flow model.Flow
	result := db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Where("tenant_id = ? AND flow_id = ?", tenantID, flowID).
		First(&flow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding flow with modules in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
			"flow_id", flowID.String(),
		)
		return nil, fmt.Errorf("gormFlowRepository.FindByIDWithModules: %w", result.Error)
	}
	return &flow, nil
}

func (r *gormFlowRepository) FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, includeInactive bool) ([]*model.Flow, error) {
	logger := middleware.GetLogger(ctx)
	var flows []*model.Flow
	query := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	result := query.Order("display_order ASC, created_at DESC").Find(&flows)
	if result.Error != nil {
		logger.Error("Error finding flows by tenant in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return nil, fmt.Errorf("gormFlowRepository.FindByTenant: %w", result.Error)
	}
	return flows, nil
}

func (r *gormFlowRepository) CountActiveByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	result := db.WithContext(ctx).Model(&model.Flow{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Count(&count)
	if result.Error != nil {
		logger.Error("Error counting active flows in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return 0, fmt.Errorf("gormFlowRepository.CountActiveByTenant: %w", result.Error)
	}
	return count, nil
}

func (r *gormFlowRepository) Update(ctx context.Context, tx *gorm.DB, tenantID, flowID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Flow{}).Where("tenant_id = ? AND flow_id = ?", tenantID, flowID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating flow in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
			"flow_id", flowID.String(),
		)
		return fmt.Errorf("gormFlowRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete はフローを論理削除します。既存アサインメントはカスケードしません。
func (r *gormFlowRepository) Delete(ctx context.Context, tx *gorm.DB, tenantID, flowID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&model.Flow{}, "flow_id = ?", flowID)
	if result.Error != nil {
		logger.Error("Error deleting flow in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
			"flow_id", flowID.String(),
		)
		return fmt.Errorf("gormFlowRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
