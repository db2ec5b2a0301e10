// internal/service/user_service_test.go
package service

import (
	"context"
	"testing"

	"go_5_onboard_keep/internal/config"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newUserTestService(db *gorm.DB) UserService {
	cfg := &config.Config{}
	cfg.App.Name = "onboard-keep-test"
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpiryMinutes = 60
	return NewUserService(
		db,
		repository.NewGormUserRepository(),
		repository.NewGormTenantRepository(),
		nil,
		cfg,
	)
}

// --- Test Login ---
func Test_userService_Login(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newUserTestService(db)

	tenant := createTestTenantRow(t, db)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &model.User{
		UserID:       uuid.New(),
		TenantID:     tenant.TenantID,
		Email:        "login@example.com",
		PasswordHash: string(hash),
		FirstName:    "花子",
		LastName:     "佐藤",
		Role:         model.RoleEmployee,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	t.Run("正常系: ログイン成功でテナントとロール入りのJWTが返る", func(t *testing.T) {
		resp, err := svc.Login(ctx, &model.LoginRequest{Email: "login@example.com", Password: "password123"})
		require.NoError(t, err)
		require.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, 3600, resp.ExpiresIn)

		claims := &model.JWTCustomClaims{}
		_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, tenant.TenantID.String(), claims.TenantID)
		assert.Equal(t, string(model.RoleEmployee), claims.Role)
		assert.Equal(t, user.UserID.String(), claims.Subject)
	})

	t.Run("異常系: パスワード不一致", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "login@example.com", Password: "wrong-password"})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 存在しないメールアドレス", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "password123"})
		require.Error(t, err)
		// ユーザーの存在有無は応答から判別できないようにする
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 無効化されたアカウント", func(t *testing.T) {
		require.NoError(t, db.Model(&model.User{}).Where("user_id = ?", user.UserID).Update("is_active", false).Error)
		defer func() {
			require.NoError(t, db.Model(&model.User{}).Where("user_id = ?", user.UserID).Update("is_active", true).Error)
		}()

		_, err := svc.Login(ctx, &model.LoginRequest{Email: "login@example.com", Password: "password123"})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

// --- Test CreateUser ---
func Test_userService_CreateUser(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newUserTestService(db)

	tenant := createTestTenantRow(t, db)

	t.Run("正常系: ロール未指定はemployeeになる", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, tenant.TenantID, &model.CreateUserRequest{
			Email:     "new@example.com",
			Password:  "password123",
			FirstName: "次郎",
			LastName:  "鈴木",
		})
		require.NoError(t, err)
		assert.Equal(t, model.RoleEmployee, user.Role)
		assert.True(t, user.IsActive)
		// パスワードはハッシュ化されて保存される
		assert.NotEqual(t, "password123", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	})

	t.Run("異常系: メールアドレス重複", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, tenant.TenantID, &model.CreateUserRequest{
			Email:     "new@example.com",
			Password:  "password123",
			FirstName: "三郎",
			LastName:  "鈴木",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	t.Run("異常系: テナントのユーザー数上限", func(t *testing.T) {
		small := createTestTenantRow(t, db)
		require.NoError(t, db.Model(&model.Tenant{}).Where("tenant_id = ?", small.TenantID).Update("max_users", 1).Error)

		_, err := svc.CreateUser(ctx, small.TenantID, &model.CreateUserRequest{
			Email:     "first@example.com",
			Password:  "password123",
			FirstName: "一人目",
			LastName:  "田中",
		})
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, small.TenantID, &model.CreateUserRequest{
			Email:     "second@example.com",
			Password:  "password123",
			FirstName: "二人目",
			LastName:  "田中",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("異常系: 存在しないテナント", func(t *testing.T) {
		other := createTestTenantRow(t, db)
		require.NoError(t, db.Unscoped().Delete(&model.Tenant{}, "tenant_id = ?", other.TenantID).Error)

		_, err := svc.CreateUser(ctx, other.TenantID, &model.CreateUserRequest{
			Email:     "ghost@example.com",
			Password:  "password123",
			FirstName: "幽霊",
			LastName:  "社員",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

// --- Test UpdateUser / DeleteUser ---
func Test_userService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newUserTestService(db)

	tenant := createTestTenantRow(t, db)
	user := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)

	t.Run("正常系: ロール昇格と部署変更", func(t *testing.T) {
		newRole := model.RoleTenantAdmin
		dept := "人事部"
		updated, err := svc.UpdateUser(ctx, tenant.TenantID, user.UserID, &model.UpdateUserRequest{
			Role:       &newRole,
			Department: &dept,
		})
		require.NoError(t, err)
		assert.Equal(t, model.RoleTenantAdmin, updated.Role)
		assert.Equal(t, "人事部", updated.Department)
	})

	t.Run("異常系: 不正なロール", func(t *testing.T) {
		bad := model.Role("owner")
		_, err := svc.UpdateUser(ctx, tenant.TenantID, user.UserID, &model.UpdateUserRequest{Role: &bad})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("正常系: 論理削除後は取得できない", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(ctx, tenant.TenantID, user.UserID))

		_, err := svc.GetUser(ctx, tenant.TenantID, user.UserID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("異常系: 他テナントのユーザーは更新できない", func(t *testing.T) {
		other := createTestTenantRow(t, db)
		victim := createTestUserRow(t, db, other.TenantID, model.RoleEmployee)

		name := "乗っ取り"
		_, err := svc.UpdateUser(ctx, tenant.TenantID, victim.UserID, &model.UpdateUserRequest{FirstName: &name})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
