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

// EmailLogRepository インターフェース
type EmailLogRepository interface {
	Create(ctx context.Context, db *gorm.DB, log *model.EmailLog) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, logID uuid.UUID) (*model.EmailLog, error)
	List(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, filter *model.EmailLogFilter) ([]*model.EmailLog, int64, error)
	Update(ctx context.Context, db *gorm.DB, logID uuid.UUID, updates map[string]interface{}) error
	// CountByType はテナントのメール種別ごとの件数を返します(統計用)。
	CountByType(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (sent int64, failed int64, byType map[string]int64, err error)
}

type gormEmailLogRepository struct{}

func NewGormEmailLogRepository() EmailLogRepository {
	return &gormEmailLogRepository{}
}

func (r *gormEmailLogRepository) Create(ctx context.Context, db *gorm.DB, log *model.EmailLog) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Create(log)
	if result.Error != nil {
		logger.Error("Error creating email log in DB",
			"error", result.Error,
			"to_email", log.ToEmail,
			"email_type", log.EmailType,
		)
		return fmt.Errorf("gormEmailLogRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormEmailLogRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID, logID uuid.UUID) (*model.EmailLog, error) {
	logger := middleware.GetLogger(ctx)
	var log model.EmailLog
	result := db.WithContext(ctx).
		Where("log_id = ? AND tenant_id = ?", logID, tenantID).
		First(&log)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding email log by ID in DB",
			"error", result.Error,
			"log_id", logID.String(),
		)
		return nil, fmt.Errorf("gormEmailLogRepository.FindByID: %w", result.Error)
	}
	return &log, nil
}

func (r *gormEmailLogRepository) List(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, filter *model.EmailLogFilter) ([]*model.EmailLog, int64, error) {
	logger := middleware.GetLogger(ctx)

	query := db.WithContext(ctx).Model(&model.EmailLog{}).Where("tenant_id = ?", tenantID)
	if filter.EmailType != nil {
		query = query.Where("email_type = ?", *filter.EmailType)
	}
	if filter.IsSent != nil {
		query = query.Where("is_sent = ?", *filter.IsSent)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Error counting email logs in DB", "error", err)
		return nil, 0, fmt.Errorf("gormEmailLogRepository.List (count): %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}

	var logs []*model.EmailLog
	result := query.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&logs)
	if result.Error != nil {
		logger.Error("Error listing email logs in DB", "error", result.Error)
		return nil, 0, fmt.Errorf("gormEmailLogRepository.List: %w", result.Error)
	}
	return logs, total, nil
}

func (r *gormEmailLogRepository) Update(ctx context.Context, db *gorm.DB, logID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.EmailLog{}).
		Where("log_id = ?", logID).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating email log in DB",
			"error", result.Error,
			"log_id", logID.String(),
		)
		return fmt.Errorf("gormEmailLogRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormEmailLogRepository) CountByType(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (int64, int64, map[string]int64, error) {
	logger := middleware.GetLogger(ctx)

	var sent, failed int64
	if err := db.WithContext(ctx).Model(&model.EmailLog{}).
		Where("tenant_id = ? AND is_sent = ?", tenantID, true).
		Count(&sent).Error; err != nil {
		logger.Error("Error counting sent email logs in DB", "error", err)
		return 0, 0, nil, fmt.Errorf("gormEmailLogRepository.CountByType (sent): %w", err)
	}
	if err := db.WithContext(ctx).Model(&model.EmailLog{}).
		Where("tenant_id = ? AND is_sent = ?", tenantID, false).
		Count(&failed).Error; err != nil {
		logger.Error("Error counting failed email logs in DB", "error", err)
		return 0, 0, nil, fmt.Errorf("gormEmailLogRepository.CountByType (failed): %w", err)
	}

	type typeCount struct {
		EmailType string
		Count     int64
	}
	var rows []typeCount
	if err := db.WithContext(ctx).Model(&model.EmailLog{}).
		Select("email_type, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Group("email_type").
		Scan(&rows).Error; err != nil {
		logger.Error("Error grouping email logs by type in DB", "error", err)
		return 0, 0, nil, fmt.Errorf("gormEmailLogRepository.CountByType (group): %w", err)
	}
	byType := make(map[string]int64, len(rows))
	for _, row := range rows {
		byType[row.EmailType] = row.Count
	}
	return sent, failed, byType, nil
}
