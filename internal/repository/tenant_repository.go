package repository

import (
	"context"
	"errors"
	"fmt"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// TenantRepository インターフェース
type TenantRepository interface {
	Create(ctx context.Context, tx *gorm.DB, tenant *model.Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (*model.Tenant, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*model.Tenant, error)
	FindBySubdomain(ctx context.Context, db *gorm.DB, subdomain string) (*model.Tenant, error)
	List(ctx context.Context, db *gorm.DB) ([]*model.Tenant, error)
	Update(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) error
}

type gormTenantRepository struct{}

func NewGormTenantRepository() TenantRepository {
	return &gormTenantRepository{}
}

// isUniqueViolation はPostgresの一意制約違反かどうかを判定します
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *gormTenantRepository) Create(ctx context.Context, tx *gorm.DB, tenant *model.Tenant) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(tenant)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return model.ErrConflict
		}
		logger.Error("Error creating tenant in DB",
			"error", result.Error,
			"slug", tenant.Slug,
		)
		return fmt.Errorf("gormTenantRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormTenantRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)
	var tenant model.Tenant
	result := db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding tenant by ID in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return nil, fmt.Errorf("gormTenantRepository.FindByID: %w", result.Error)
	}
	return &tenant, nil
}

func (r *gormTenantRepository) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)
	var tenant model.Tenant
	result := db.WithContext(ctx).Where("slug = ?", slug).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding tenant by slug in DB", "error", result.Error, "slug", slug)
		return nil, fmt.Errorf("gormTenantRepository.FindBySlug: %w", result.Error)
	}
	return &tenant, nil
}

func (r *gormTenantRepository) FindBySubdomain(ctx context.Context, db *gorm.DB, subdomain string) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)
	var tenant model.Tenant
	result := db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding tenant by subdomain in DB", "error", result.Error, "subdomain", subdomain)
		return nil, fmt.Errorf("gormTenantRepository.FindBySubdomain: %w", result.Error)
	}
	return &tenant, nil
}

func (r *gormTenantRepository) List(ctx context.Context, db *gorm.DB) ([]*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)
	var tenants []*model.Tenant
	result := db.WithContext(ctx).Order("created_at DESC").Find(&tenants)
	if result.Error != nil {
		logger.Error("Error listing tenants in DB", "error", result.Error)
		return nil, fmt.Errorf("gormTenantRepository.List: %w", result.Error)
	}
	return tenants, nil
}

func (r *gormTenantRepository) Update(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Tenant{}).Where("tenant_id = ?", tenantID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating tenant in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return fmt.Errorf("gormTenantRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormTenantRepository) Delete(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&model.Tenant{})
	if result.Error != nil {
		logger.Error("Error deleting tenant in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return fmt.Errorf("gormTenantRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
