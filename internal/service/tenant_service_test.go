// internal/service/tenant_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTenantTestService(db *gorm.DB) TenantService {
	return NewTenantService(
		db,
		repository.NewGormTenantRepository(),
		repository.NewGormUserRepository(),
		repository.NewGormFlowRepository(),
		repository.NewGormAssignmentRepository(),
	)
}

// --- Test CreateTenant ---
func Test_tenantService_CreateTenant(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newTenantTestService(db)

	t.Run("正常系: デフォルト値が設定される", func(t *testing.T) {
		sub := "acme"
		req := &model.CreateTenantRequest{
			Name:         "Acme株式会社",
			Slug:         "acme-corp",
			Subdomain:    &sub,
			ContactEmail: "admin@acme.example.com",
		}

		tenant, err := svc.CreateTenant(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, tenant.TenantID)
		assert.Equal(t, "free", tenant.Plan) // プラン未指定はfree
		assert.Equal(t, 10, tenant.MaxUsers)
		assert.True(t, tenant.IsActive)
		assert.NotNil(t, tenant.Settings)
	})

	t.Run("正常系: プラン指定あり", func(t *testing.T) {
		req := &model.CreateTenantRequest{
			Name: "Beta社",
			Slug: "beta-inc",
			Plan: "business",
		}

		tenant, err := svc.CreateTenant(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "business", tenant.Plan)
	})

	t.Run("正常系: 初期管理者も同時に登録される", func(t *testing.T) {
		req := &model.CreateTenantRequest{
			Name:           "Gamma株式会社",
			Slug:           "gamma-corp",
			AdminEmail:     "admin@gamma.example.com",
			AdminPassword:  "password123",
			AdminFirstName: "太郎",
			AdminLastName:  "山田",
		}

		tenant, err := svc.CreateTenant(ctx, req)
		require.NoError(t, err)

		var admin model.User
		require.NoError(t, db.Where("tenant_id = ? AND email = ?", tenant.TenantID, req.AdminEmail).First(&admin).Error)
		assert.Equal(t, model.RoleTenantAdmin, admin.Role)
		assert.True(t, admin.IsActive)
		// パスワードはハッシュ化されて保存される
		assert.NotEqual(t, req.AdminPassword, admin.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.AdminPassword)))
	})

	t.Run("異常系: 管理者メール重複はテナントごとロールバック", func(t *testing.T) {
		req := &model.CreateTenantRequest{
			Name:           "Delta社",
			Slug:           "delta-inc",
			AdminEmail:     "admin@gamma.example.com", // 既存管理者と衝突
			AdminPassword:  "password123",
			AdminFirstName: "花子",
			AdminLastName:  "佐藤",
		}

		_, err := svc.CreateTenant(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrConflict)

		var count int64
		require.NoError(t, db.Model(&model.Tenant{}).Where("slug = ?", "delta-inc").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("異常系: slug重複はErrConflict", func(t *testing.T) {
		req := &model.CreateTenantRequest{
			Name: "偽Acme",
			Slug: "acme-corp",
		}

		_, err := svc.CreateTenant(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrConflict)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DUPLICATE_TENANT", appErr.Code)
	})
}

// --- Test ResolveTenant ---
func Test_tenantService_ResolveTenant(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newTenantTestService(db)

	sub := "resolve-sub"
	tenant := &model.Tenant{
		TenantID:  uuid.New(),
		Name:      "解決テスト社",
		Slug:      "resolve-slug",
		Subdomain: &sub,
		Plan:      "free",
		MaxUsers:  10,
		IsActive:  true,
	}
	require.NoError(t, db.Create(tenant).Error)

	t.Run("正常系: UUIDで解決", func(t *testing.T) {
		got, err := svc.ResolveTenant(ctx, tenant.TenantID.String())
		require.NoError(t, err)
		assert.Equal(t, tenant.TenantID, got.TenantID)
	})

	t.Run("正常系: slugで解決", func(t *testing.T) {
		got, err := svc.ResolveTenant(ctx, "resolve-slug")
		require.NoError(t, err)
		assert.Equal(t, tenant.TenantID, got.TenantID)
	})

	t.Run("正常系: サブドメインで解決", func(t *testing.T) {
		got, err := svc.ResolveTenant(ctx, "resolve-sub")
		require.NoError(t, err)
		assert.Equal(t, tenant.TenantID, got.TenantID)
	})

	t.Run("正常系: UUID形式だが未登録ならslugへフォールバック", func(t *testing.T) {
		// UUID検索がNotFoundでも後続のslug/サブドメイン検索に落ちる
		_, err := svc.ResolveTenant(ctx, uuid.New().String())
		assert.ErrorIs(t, err, model.ErrTenantNotFound)
	})

	t.Run("異常系: 未知の識別子はErrTenantNotFound", func(t *testing.T) {
		_, err := svc.ResolveTenant(ctx, "no-such-tenant")
		assert.ErrorIs(t, err, model.ErrTenantNotFound)
	})

	t.Run("異常系: 非アクティブなテナントは解決されない", func(t *testing.T) {
		inactive := createTestTenantRow(t, db)
		require.NoError(t, db.Model(&model.Tenant{}).
			Where("tenant_id = ?", inactive.TenantID).
			Update("is_active", false).Error)

		_, err := svc.ResolveTenant(ctx, inactive.TenantID.String())
		assert.ErrorIs(t, err, model.ErrTenantNotFound)
	})

	t.Run("異常系: 論理削除済みテナントは解決されない", func(t *testing.T) {
		deleted := createTestTenantRow(t, db)
		require.NoError(t, svc.DeleteTenant(ctx, deleted.TenantID))

		_, err := svc.ResolveTenant(ctx, deleted.Slug)
		assert.ErrorIs(t, err, model.ErrTenantNotFound)
	})
}

// --- Test UpdateTenant ---
func Test_tenantService_UpdateTenant(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newTenantTestService(db)

	tenant := createTestTenantRow(t, db)

	t.Run("正常系: 部分更新", func(t *testing.T) {
		newName := "改名後株式会社"
		inactive := false
		req := &model.UpdateTenantRequest{
			Name:     &newName,
			IsActive: &inactive,
			Settings: model.JSONMap{"locale": "ja"},
		}

		updated, err := svc.UpdateTenant(ctx, tenant.TenantID, req)
		require.NoError(t, err)
		assert.Equal(t, "改名後株式会社", updated.Name)
		assert.False(t, updated.IsActive)
		assert.Equal(t, "ja", updated.Settings["locale"])
		// 未指定フィールドは据え置き
		assert.Equal(t, tenant.Slug, updated.Slug)
	})

	t.Run("異常系: 存在しないテナントはErrNotFound", func(t *testing.T) {
		name := "幽霊"
		_, err := svc.UpdateTenant(ctx, uuid.New(), &model.UpdateTenantRequest{Name: &name})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

// --- Test GetTenantStats ---
func Test_tenantService_GetTenantStats(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newTenantTestService(db)

	tenant := createTestTenantRow(t, db)
	admin := createTestUserRow(t, db, tenant.TenantID, model.RoleTenantAdmin)
	employee := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	inactiveUser := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	require.NoError(t, db.Model(&model.User{}).
		Where("user_id = ?", inactiveUser.UserID).
		Update("is_active", false).Error)

	flow := createTestFlowRow(t, db, tenant.TenantID)
	inactiveFlow := createTestFlowRow(t, db, tenant.TenantID)
	require.NoError(t, db.Model(&model.Flow{}).
		Where("flow_id = ?", inactiveFlow.FlowID).
		Update("is_active", false).Error)

	require.NoError(t, db.Create(&model.Assignment{
		AssignmentID: uuid.New(),
		TenantID:     tenant.TenantID,
		FlowID:       flow.FlowID,
		UserID:       employee.UserID,
		Status:       model.StatusNotStarted,
		AssignedAt:   time.Now(),
		AssignedBy:   &admin.UserID,
	}).Error)

	// 別テナントのデータは集計に含めない
	other := createTestTenantRow(t, db)
	createTestUserRow(t, db, other.TenantID, model.RoleEmployee)
	createTestFlowRow(t, db, other.TenantID)

	t.Run("正常系: テナント内のみ集計される", func(t *testing.T) {
		stats, err := svc.GetTenantStats(ctx, tenant.TenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalUsers)
		assert.Equal(t, int64(2), stats.ActiveUsers)
		assert.Equal(t, int64(1), stats.TotalFlows) // 有効フローのみ
		assert.Equal(t, int64(1), stats.TotalAssignments)
	})

	t.Run("異常系: 存在しないテナントはErrNotFound", func(t *testing.T) {
		_, err := svc.GetTenantStats(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

// --- Test DeleteTenant ---
func Test_tenantService_DeleteTenant(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newTenantTestService(db)

	tenant := createTestTenantRow(t, db)

	t.Run("正常系: 論理削除後は取得できない", func(t *testing.T) {
		require.NoError(t, svc.DeleteTenant(ctx, tenant.TenantID))

		_, err := svc.GetTenant(ctx, tenant.TenantID)
		assert.ErrorIs(t, err, model.ErrNotFound)

		// レコード自体はDeletedAt付きで残る
		var raw model.Tenant
		require.NoError(t, db.Unscoped().Where("tenant_id = ?", tenant.TenantID).First(&raw).Error)
		assert.True(t, raw.DeletedAt.Valid)
	})

	t.Run("異常系: 二重削除はErrNotFound", func(t *testing.T) {
		err := svc.DeleteTenant(ctx, tenant.TenantID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
