package service

import (
	"context"
	"errors"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TenantService インターフェース
//
//go:generate mockery --name TenantService --output ./mocks --outpkg mocks --case=underscore
type TenantService interface {
	CreateTenant(ctx context.Context, req *model.CreateTenantRequest) (*model.Tenant, error)
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*model.Tenant, error)
	// ResolveTenant は UUID・slug・サブドメインのいずれかでテナントを解決します。
	ResolveTenant(ctx context.Context, identifier string) (*model.Tenant, error)
	ListTenants(ctx context.Context) ([]*model.Tenant, error)
	UpdateTenant(ctx context.Context, tenantID uuid.UUID, req *model.UpdateTenantRequest) (*model.Tenant, error)
	DeleteTenant(ctx context.Context, tenantID uuid.UUID) error
	GetTenantStats(ctx context.Context, tenantID uuid.UUID) (*model.TenantStats, error)
}

type tenantService struct {
	db             *gorm.DB
	tenantRepo     repository.TenantRepository
	userRepo       repository.UserRepository
	flowRepo       repository.FlowRepository
	assignmentRepo repository.AssignmentRepository
}

func NewTenantService(
	db *gorm.DB,
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
	flowRepo repository.FlowRepository,
	assignmentRepo repository.AssignmentRepository,
) TenantService {
	return &tenantService{
		db:             db,
		tenantRepo:     tenantRepo,
		userRepo:       userRepo,
		flowRepo:       flowRepo,
		assignmentRepo: assignmentRepo,
	}
}

func (s *tenantService) CreateTenant(ctx context.Context, req *model.CreateTenantRequest) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	plan := req.Plan
	if plan == "" {
		plan = "free"
	}

	tenant := &model.Tenant{
		TenantID:     uuid.New(),
		Name:         req.Name,
		Slug:         req.Slug,
		Subdomain:    req.Subdomain,
		ContactEmail: req.ContactEmail,
		Plan:         plan,
		MaxUsers:     10,
		IsActive:     true,
		Settings:     model.JSONMap{},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.Create(ctx, tx, tenant); err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Tenant slug or subdomain already exists", "slug", req.Slug)
				return model.NewAppError("DUPLICATE_TENANT", "このスラッグまたはサブドメインは既に使用されています。", "slug", model.ErrConflict)
			}
			logger.Error("Failed to create tenant in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "テナントの作成に失敗しました。", "", err)
		}

		// 初期管理者の登録(任意)。slug 衝突と同様、失敗時はテナント作成ごとロールバックする。
		if req.AdminEmail != "" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
			if err != nil {
				logger.Error("Failed to hash admin password", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
			}
			admin := &model.User{
				UserID:       uuid.New(),
				TenantID:     tenant.TenantID,
				Email:        req.AdminEmail,
				PasswordHash: string(hashedPassword),
				FirstName:    req.AdminFirstName,
				LastName:     req.AdminLastName,
				Role:         model.RoleTenantAdmin,
				IsActive:     true,
			}
			if err := s.userRepo.Create(ctx, tx, admin); err != nil {
				if errors.Is(err, model.ErrConflict) {
					logger.Warn("Admin email already exists", "email", req.AdminEmail)
					return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "admin_email", model.ErrConflict)
				}
				logger.Error("Failed to create admin user in DB", "error", err)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "管理者ユーザーの作成に失敗しました。", "", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Tenant created", "tenant_id", tenant.TenantID, "slug", tenant.Slug)
	return tenant, nil
}

func (s *tenantService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*model.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, s.db, tenantID)
}

func (s *tenantService) ResolveTenant(ctx context.Context, identifier string) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	tenant, err := s.findTenantByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Tenant not resolved", "identifier", identifier)
			return nil, model.ErrTenantNotFound
		}
		return nil, err
	}
	// 非アクティブなテナントは外部には存在しないものとして扱う
	if !tenant.IsActive {
		logger.Warn("Tenant resolved but inactive", "tenant_id", tenant.TenantID)
		return nil, model.ErrTenantNotFound
	}
	return tenant, nil
}

// findTenantByIdentifier は UUID → slug → サブドメインの順に検索します
func (s *tenantService) findTenantByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		tenant, err := s.tenantRepo.FindByID(ctx, s.db, id)
		if err == nil {
			return tenant, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	tenant, err := s.tenantRepo.FindBySlug(ctx, s.db, identifier)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	return s.tenantRepo.FindBySubdomain(ctx, s.db, identifier)
}

func (s *tenantService) ListTenants(ctx context.Context) ([]*model.Tenant, error) {
	return s.tenantRepo.List(ctx, s.db)
}

func (s *tenantService) UpdateTenant(ctx context.Context, tenantID uuid.UUID, req *model.UpdateTenantRequest) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ContactEmail != nil {
		updates["contact_email"] = *req.ContactEmail
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Settings != nil {
		updates["settings"] = req.Settings
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.tenantRepo.Update(ctx, tx, tenantID, updates)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Failed to update tenant", "error", err, "tenant_id", tenantID.String())
		return nil, model.ErrInternalServer
	}

	return s.tenantRepo.FindByID(ctx, s.db, tenantID)
}

func (s *tenantService) DeleteTenant(ctx context.Context, tenantID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.tenantRepo.Delete(ctx, tx, tenantID)
	})
}

func (s *tenantService) GetTenantStats(ctx context.Context, tenantID uuid.UUID) (*model.TenantStats, error) {
	logger := middleware.GetLogger(ctx)

	// テナントの存在確認
	if _, err := s.tenantRepo.FindByID(ctx, s.db, tenantID); err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		logger.Error("Failed to list users for stats", "error", err)
		return nil, model.ErrInternalServer
	}
	var activeUsers int64
	for _, u := range users {
		if u.IsActive {
			activeUsers++
		}
	}

	totalFlows, err := s.flowRepo.CountActiveByTenant(ctx, s.db, tenantID)
	if err != nil {
		logger.Error("Failed to count flows for stats", "error", err)
		return nil, model.ErrInternalServer
	}

	totalAssignments, err := s.assignmentRepo.CountByTenant(ctx, s.db, tenantID)
	if err != nil {
		logger.Error("Failed to count assignments for stats", "error", err)
		return nil, model.ErrInternalServer
	}

	return &model.TenantStats{
		TotalUsers:       int64(len(users)),
		ActiveUsers:      activeUsers,
		TotalFlows:       totalFlows,
		TotalAssignments: totalAssignments,
	}, nil
}
