package service

import (
	"context"
	"errors"
	"time"

	"go_5_onboard_keep/internal/config"
	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService インターフェース
type UserService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	CreateUser(ctx context.Context, tenantID uuid.UUID, req *model.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, tenantID uuid.UUID) ([]*model.User, error)
	UpdateUser(ctx context.Context, tenantID, userID uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, tenantID, userID uuid.UUID) error
}

type userService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	dispatcher *NotificationDispatcher
	cfg        *config.Config
}

func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	dispatcher *NotificationDispatcher,
	cfg *config.Config,
) UserService {
	return &userService{
		db:         db,
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// Login はユーザーを認証し、テナントとロールを含むJWTを返します
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrInvalidInput)
		}
		logger.Error("Login failed: db error on FindByEmail", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		logger.Warn("Login failed: password mismatch", "user_id", user.UserID)
		return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrInvalidInput)
	}

	if !user.IsActive {
		logger.Warn("Login failed: account not active", "user_id", user.UserID)
		return nil, model.NewAppError("ACCOUNT_NOT_ACTIVE", "アカウントが無効化されています。管理者にお問い合わせください。", "", model.ErrForbidden)
	}

	expiry := time.Duration(s.cfg.JWT.ExpiryMinutes) * time.Minute
	claims := &model.JWTCustomClaims{
		TenantID: user.TenantID.String(),
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.App.Name,
			Subject:   user.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		logger.Error("Failed to sign JWT", "error", err, "user_id", user.UserID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	logger.Info("Login successful", "user_id", user.UserID, "tenant_id", user.TenantID)
	return &model.LoginResponse{
		AccessToken: signedToken,
		ExpiresIn:   int(expiry.Seconds()),
	}, nil
}

// CreateUser は新しいユーザーを作成し、招待メールを送信します。
// テナントの max_users 上限に達している場合は作成できません。
func (s *userService) CreateUser(ctx context.Context, tenantID uuid.UUID, req *model.CreateUserRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}
	if !role.Valid() {
		return nil, model.NewAppError("INVALID_ROLE", "不正なロールが指定されました。", "role", model.ErrInvalidInput)
	}

	var newUser *model.User
	var tenant *model.Tenant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tenant, err = s.tenantRepo.FindByID(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		// ユーザー数の上限チェック
		activeCount, err := s.userRepo.CountActiveByTenant(ctx, tx, tenantID)
		if err != nil {
			logger.Error("Failed to count active users", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
		}
		if tenant.MaxUsers > 0 && activeCount >= int64(tenant.MaxUsers) {
			logger.Warn("User limit reached for tenant", "tenant_id", tenantID, "max_users", tenant.MaxUsers)
			return model.NewAppError("USER_LIMIT_REACHED", "テナントのユーザー数上限に達しています。", "", model.ErrForbidden)
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
		}

		user := &model.User{
			UserID:       uuid.New(),
			TenantID:     tenantID,
			Email:        req.Email,
			PasswordHash: string(hashedPassword),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			JobTitle:     req.JobTitle,
			Department:   req.Department,
			Role:         role,
			IsActive:     true,
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Email already exists", "email", req.Email)
				return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
			}
			logger.Error("Failed to create user in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
		}

		newUser = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 招待メールはコミット後に送信(失敗してもユーザー作成は成功扱い)
	if s.dispatcher != nil {
		s.dispatcher.SendUserInvitation(ctx, tenant, newUser)
	}

	logger.Info("User created", "user_id", newUser.UserID, "tenant_id", tenantID, "role", newUser.Role)
	return newUser, nil
}

func (s *userService) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.FindByID(ctx, s.db, tenantID, userID)
}

func (s *userService) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]*model.User, error) {
	users, err := s.userRepo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list users", "error", err)
		return nil, model.ErrInternalServer
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, tenantID, userID uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.JobTitle != nil {
		updates["job_title"] = *req.JobTitle
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, model.NewAppError("INVALID_ROLE", "不正なロールが指定されました。", "role", model.ErrInvalidInput)
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.userRepo.Update(ctx, tx, tenantID, userID, updates)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Failed to update user", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}

	return s.userRepo.FindByID(ctx, s.db, tenantID, userID)
}

func (s *userService) DeleteUser(ctx context.Context, tenantID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.userRepo.Delete(ctx, tx, tenantID, userID)
	})
}
