package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentRepository インターフェース
type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *model.Assignment) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, assignmentID uuid.UUID) (*model.Assignment, error)
	// FindActiveByFlowAndUser は同一(flow, user)の未完了アサインメントを返します(重複チェック用)。
	FindActiveByFlowAndUser(ctx context.Context, db *gorm.DB, flowID, userID uuid.UUID) (*model.Assignment, error)
	FindByUser(ctx context.Context, db *gorm.DB, tenantID, userID uuid.UUID) ([]*model.Assignment, error)
	FindByFlow(ctx context.Context, db *gorm.DB, flowID uuid.UUID) ([]*model.Assignment, error)
	List(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, filter *model.AssignmentFilter) ([]*model.Assignment, int64, error)
	CountByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (int64, error)
	CountByTenantAndStatus(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, status model.AssignmentStatus) (int64, error)
	CountOverdueByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, now time.Time) (int64, error)
	CountCompletedBetween(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, from, to time.Time) (int64, error)
	// ListCompletionSpans は完了済みアサインメントの (assigned_at, completed_at) を
	// 全件返します。所要日数の集計用でページングしません。
	ListCompletionSpans(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) ([]model.CompletionSpan, error)
	CountAssignedBetween(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, from, to time.Time) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, tenantID, assignmentID uuid.UUID) error
}

type gormAssignmentRepository struct{}

func NewGormAssignmentRepository() AssignmentRepository {
	return &gormAssignmentRepository{}
}

func (r *gormAssignmentRepository) Create(ctx context.Context, tx *gorm.DB, assignment *model.Assignment) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(assignment)
	if result.Error != nil {
		logger.Error("Error creating assignment in DB",
			"error", result.Error,
			"flow_id", assignment.FlowID.String(),
			"user_id", assignment.UserID.String(),
		)
		return fmt.Errorf("gormAssignmentRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormAssignmentRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID, assignmentID uuid.UUID) (*model.Assignment, error) {
	logger := middleware.GetLogger(ctx)
	var assignment model.Assignment
	result := db.WithContext(ctx).
		Preload("Flow").
		Preload("Progress", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Progress.Module").
		Where("assignment_id = ? AND tenant_id = ?", assignmentID, tenantID).
		First(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding assignment by ID in DB",
			"error", result.Error,
			"assignment_id", assignmentID.String(),
		)
		return nil, fmt.Errorf("gormAssignmentRepository.FindByID: %w", result.Error)
	}
	return &assignment, nil
}

func (r *gormAssignmentRepository) FindActiveByFlowAndUser(ctx context.Context, db *gorm.DB, flowID, userID uuid.UUID) (*model.Assignment, error) {
	logger := middleware.GetLogger(ctx)
	var assignment model.Assignment
	result := db.WithContext(ctx).
		Where("flow_id = ? AND user_id = ? AND status <> ?", flowID, userID, model.StatusCompleted).
		First(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding active assignment in DB",
			"error", result.Error,
			"flow_id", flowID.String(),
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormAssignmentRepository.FindActiveByFlowAndUser: %w", result.Error)
	}
	return &assignment, nil
}

func (r *gormAssignmentRepository) FindByUser(ctx context.Context, db *gorm.DB, tenantID, userID uuid.UUID) ([]*model.Assignment, error) {
	logger := middleware.GetLogger(ctx)
	var assignments []*model.Assignment
	result := db.WithContext(ctx).
		Preload("Flow").
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("assigned_at DESC").
		Find(&assignments)
	if result.Error != nil {
		logger.Error("Error finding assignments by user in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormAssignmentRepository.FindByUser: %w", result.Error)
	}
	return assignments, nil
}

func (r *gormAssignmentRepository) FindByFlow(ctx context.Context, db *gorm.DB, flowID uuid.UUID) ([]*model.Assignment, error) {
	logger := middleware.GetLogger(ctx)
	var assignments []*model.Assignment
	result := db.WithContext(ctx).
		Where("flow_id = ?", flowID).
		Order("assigned_at DESC").
		Find(&assignments)
	if result.Error != nil {
		logger.Error("Error finding assignments by flow in DB",
			"error", result.Error,
			"flow_id", flowID.String(),
		)
		return nil, fmt.Errorf("gormAssignmentRepository.FindByFlow: %w", result.Error)
	}
	return assignments, nil
}

func (r *gormAssignmentRepository) List(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, filter *model.AssignmentFilter) ([]*model.Assignment, int64, error) {
	logger := middleware.GetLogger(ctx)

	query := db.WithContext(ctx).Model(&model.Assignment{}).Where("tenant_id = ?", tenantID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FlowID != nil {
		query = query.Where("flow_id = ?", *filter.FlowID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Error counting assignments in DB", "error", err)
		return nil, 0, fmt.Errorf("gormAssignmentRepository.List (count): %w", err)
	}

	var assignments []*model.Assignment
	result := query.
		Preload("Flow").
		Order("assigned_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&assignments)
	if result.Error != nil {
		logger.Error("Error listing assignments in DB", "error", result.Error)
		return nil, 0, fmt.Errorf("gormAssignmentRepository.List: %w", result.Error)
	}
	return assignments, total, nil
}

func (r *gormAssignmentRepository) CountByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Assignment{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gormAssignmentRepository.CountByTenant: %w", err)
	}
	return count, nil
}

func (r *gormAssignmentRepository) CountByTenantAndStatus(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, status model.AssignmentStatus) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Assignment{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gormAssignmentRepository.CountByTenantAndStatus: %w", err)
	}
	return count, nil
}

func (r *gormAssignmentRepository) CountOverdueByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Assignment{}).
		Where("tenant_id = ? AND due_date IS NOT NULL AND due_date < ? AND status <> ?", tenantID, now, model.StatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gormAssignmentRepository.CountOverdueByTenant: %w", err)
	}
	return count, nil
}

func (r *gormAssignmentRepository) CountCompletedBetween(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Assignment{}).
		Where("tenant_id = ? AND completed_at >= ? AND completed_at < ?", tenantID, from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gormAssignmentRepository.CountCompletedBetween: %w", err)
	}
	return count, nil
}

func (r *gormAssignmentRepository) ListCompletionSpans(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) ([]model.CompletionSpan, error) {
	var spans []model.CompletionSpan
	err := db.WithContext(ctx).Model(&model.Assignment{}).
		Where("tenant_id = ? AND status = ? AND completed_at IS NOT NULL", tenantID, model.StatusCompleted).
		Select("assigned_at", "completed_at").
		Scan(&spans).Error
	if err != nil {
		return nil, fmt.Errorf("gormAssignmentRepository.ListCompletionSpans: %w", err)
	}
	return spans, nil
}

func (r *gormAssignmentRepository) CountAssignedBetween(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Assignment{}).
		Where("tenant_id = ? AND assigned_at >= ? AND assigned_at < ?", tenantID, from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gormAssignmentRepository.CountAssignedBetween: %w", err)
	}
	return count, nil
}

func (r *gormAssignmentRepository) Update(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Assignment{}).
		Where("assignment_id = ?", assignmentID).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating assignment in DB",
			"error", result.Error,
			"assignment_id", assignmentID.String(),
		)
		return fmt.Errorf("gormAssignmentRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormAssignmentRepository) Delete(ctx context.Context, tx *gorm.DB, tenantID, assignmentID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("assignment_id = ? AND tenant_id = ?", assignmentID, tenantID).
		Delete(&model.Assignment{})
	if result.Error != nil {
		logger.Error("Error deleting assignment in DB",
			"error", result.Error,
			"assignment_id", assignmentID.String(),
		)
		return fmt.Errorf("gormAssignmentRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
