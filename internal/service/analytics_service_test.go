// internal/service/analytics_service_test.go
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
	"gorm.io/gorm"
)

func newAnalyticsTestService(db *gorm.DB) AnalyticsService {
	return NewAnalyticsService(
		db,
		repository.NewGormAssignmentRepository(),
		repository.NewGormProgressRepository(),
		repository.NewGormFlowRepository(),
		repository.NewGormModuleRepository(),
		repository.NewGormUserRepository(),
	)
}

// --- Test GetDashboardOverview ---
func Test_analyticsService_GetDashboardOverview(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	assignSvc := newAssignmentTestService(db)
	svc := newAnalyticsTestService(db)

	tenant := createTestTenantRow(t, db)
	admin := createTestUserRow(t, db, tenant.TenantID, model.RoleTenantAdmin)
	empA := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	empB := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	flow := createTestFlowRow(t, db, tenant.TenantID)
	mod := createTestModuleRow(t, db, flow.FlowID, 1, model.ContentTypeText, nil)

	// empA: 完了、empB: 期限超過の未着手
	a, err := assignSvc.CreateAssignment(ctx, tenant.TenantID, &admin.UserID, &model.CreateAssignmentRequest{FlowID: flow.FlowID, UserID: empA.UserID})
	require.NoError(t, err)
	_, err = assignSvc.CompleteModule(ctx, tenant.TenantID, a.AssignmentID, mod.ModuleID, empA.UserID, &model.CompleteModuleRequest{})
	require.NoError(t, err)

	pastDue := time.Now().AddDate(0, 0, -1)
	_, err = assignSvc.CreateAssignment(ctx, tenant.TenantID, &admin.UserID, &model.CreateAssignmentRequest{FlowID: flow.FlowID, UserID: empB.UserID, DueDate: &pastDue})
	require.NoError(t, err)

	t.Run("正常系: 全体指標の集計", func(t *testing.T) {
		overview, err := svc.GetDashboardOverview(ctx, tenant.TenantID)
		require.NoError(t, err)

		assert.EqualValues(t, 3, overview.TotalUsers) // 管理者も含む
		assert.EqualValues(t, 1, overview.TotalFlows)
		assert.EqualValues(t, 2, overview.TotalAssignments)
		assert.EqualValues(t, 1, overview.AssignmentsCompleted)
		assert.EqualValues(t, 1, overview.AssignmentsNotStarted)
		assert.EqualValues(t, 0, overview.AssignmentsInProgress)
		assert.EqualValues(t, 1, overview.AssignmentsOverdue)
		assert.InDelta(t, 50.0, overview.OverallCompletionRate, 0.01)
		assert.EqualValues(t, 2, overview.AssignmentsThisWeek)
		assert.EqualValues(t, 1, overview.CompletionsThisWeek)
	})

	t.Run("正常系: データのないテナントはゼロ集計", func(t *testing.T) {
		empty := createTestTenantRow(t, db)
		overview, err := svc.GetDashboardOverview(ctx, empty.TenantID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, overview.TotalAssignments)
		assert.Zero(t, overview.OverallCompletionRate)
		assert.Zero(t, overview.AvgCompletionTimeDays)
	})
}

// --- Test GetFlowAnalytics ---
func Test_analyticsService_GetFlowAnalytics(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	assignSvc := newAssignmentTestService(db)
	svc := newAnalyticsTestService(db)

	tenant := createTestTenantRow(t, db)
	admin := createTestUserRow(t, db, tenant.TenantID, model.RoleTenantAdmin)
	empA := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	empB := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	flow := createTestFlowRow(t, db, tenant.TenantID)
	easy := createTestModuleRow(t, db, flow.FlowID, 1, model.ContentTypeText, nil)
	hard := createTestModuleRow(t, db, flow.FlowID, 2, model.ContentTypeText, nil)

	// empA: 両方完了、empB: easyのみ完了 → hardの完了率が最低になる
	a, err := assignSvc.CreateAssignment(ctx, tenant.TenantID, &admin.UserID, &model.CreateAssignmentRequest{FlowID: flow.FlowID, UserID: empA.UserID})
	require.NoError(t, err)
	_, err = assignSvc.CompleteModule(ctx, tenant.TenantID, a.AssignmentID, easy.ModuleID, empA.UserID, &model.CompleteModuleRequest{})
	require.NoError(t, err)
	_, err = assignSvc.CompleteModule(ctx, tenant.TenantID, a.AssignmentID, hard.ModuleID, empA.UserID, &model.CompleteModuleRequest{})
	require.NoError(t, err)

	b, err := assignSvc.CreateAssignment(ctx, tenant.TenantID, &admin.UserID, &model.CreateAssignmentRequest{FlowID: flow.FlowID, UserID: empB.UserID})
	require.NoError(t, err)
	_, err = assignSvc.CompleteModule(ctx, tenant.TenantID, b.AssignmentID, easy.ModuleID, empB.UserID, &model.CompleteModuleRequest{})
	require.NoError(t, err)

	t.Run("正常系: フロー単位の集計と最難関モジュール", func(t *testing.T) {
		analytics, err := svc.GetFlowAnalytics(ctx, tenant.TenantID, flow.FlowID)
		require.NoError(t, err)

		assert.Equal(t, flow.FlowID, analytics.FlowID)
		assert.Equal(t, 2, analytics.TotalAssignments)
		assert.Equal(t, 1, analytics.CompletedAssignments)
		assert.Equal(t, 1, analytics.InProgressAssignments)
		assert.InDelta(t, 50.0, analytics.CompletionRate, 0.01)
		// (100 + 50) / 2
		assert.InDelta(t, 75.0, analytics.AvgProgressPercentage, 0.01)

		require.NotNil(t, analytics.HardestModuleID)
		assert.Equal(t, hard.ModuleID, *analytics.HardestModuleID)
		require.NotNil(t, analytics.HardestModuleCompletionRate)
		assert.InDelta(t, 50.0, *analytics.HardestModuleCompletionRate, 0.01)
	})

	t.Run("正常系: アサインメントのないフロー", func(t *testing.T) {
		lonelyFlow := createTestFlowRow(t, db, tenant.TenantID)
		analytics, err := svc.GetFlowAnalytics(ctx, tenant.TenantID, lonelyFlow.FlowID)
		require.NoError(t, err)
		assert.Equal(t, 0, analytics.TotalAssignments)
		assert.Zero(t, analytics.CompletionRate)
		assert.Nil(t, analytics.HardestModuleID)
	})

	t.Run("正常系: 全フロー分析には非アクティブも含まれる", func(t *testing.T) {
		require.NoError(t, db.Model(&model.Flow{}).Where("flow_id = ?", flow.FlowID).Update("is_active", false).Error)

		all, err := svc.GetAllFlowsAnalytics(ctx, tenant.TenantID)
		require.NoError(t, err)
		found := false
		for _, fa := range all {
			if fa.FlowID == flow.FlowID {
				found = true
			}
		}
		assert.True(t, found)

		require.NoError(t, db.Model(&model.Flow{}).Where("flow_id = ?", flow.FlowID).Update("is_active", true).Error)
	})
}

// --- Test GetCompletionTrends ---
func Test_analyticsService_GetCompletionTrends(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	assignSvc := newAssignmentTestService(db)
	svc := newAnalyticsTestService(db)

	tenant := createTestTenantRow(t, db)
	admin := createTestUserRow(t, db, tenant.TenantID, model.RoleTenantAdmin)
	employee := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	flow := createTestFlowRow(t, db, tenant.TenantID)
	mod := createTestModuleRow(t, db, flow.FlowID, 1, model.ContentTypeText, nil)

	a, err := assignSvc.CreateAssignment(ctx, tenant.TenantID, &admin.UserID, &model.CreateAssignmentRequest{FlowID: flow.FlowID, UserID: employee.UserID})
	require.NoError(t, err)
	_, err = assignSvc.CompleteModule(ctx, tenant.TenantID, a.AssignmentID, mod.ModuleID, employee.UserID, &model.CompleteModuleRequest{})
	require.NoError(t, err)

	t.Run("正常系: 両端含みの密な日次系列", func(t *testing.T) {
		end := time.Now()
		start := end.AddDate(0, 0, -7)
		trends, err := svc.GetCompletionTrends(ctx, tenant.TenantID, start, end)
		require.NoError(t, err)

		// 7日前〜今日で8点(活動ゼロの日も含まれる)
		require.Len(t, trends.Trends, 8)
		for i := 1; i < len(trends.Trends); i++ {
			assert.Equal(t, 24*time.Hour, trends.Trends[i].Date.Sub(trends.Trends[i-1].Date))
		}
		assert.EqualValues(t, 1, trends.TotalCompletions)
		assert.EqualValues(t, 1, trends.TotalNewAssignments)

		// 今日の点に活動が乗っている
		last := trends.Trends[len(trends.Trends)-1]
		assert.EqualValues(t, 1, last.Completions)
		assert.EqualValues(t, 1, last.NewAssignments)
	})

	t.Run("正常系: 1日だけの範囲は1点", func(t *testing.T) {
		day := time.Now()
		trends, err := svc.GetCompletionTrends(ctx, tenant.TenantID, day, day)
		require.NoError(t, err)
		require.Len(t, trends.Trends, 1)
	})

	t.Run("正常系: 活動のない期間はすべてゼロの点", func(t *testing.T) {
		end := time.Now().AddDate(0, -6, 0)
		start := end.AddDate(0, 0, -3)
		trends, err := svc.GetCompletionTrends(ctx, tenant.TenantID, start, end)
		require.NoError(t, err)
		require.Len(t, trends.Trends, 4)
		for _, p := range trends.Trends {
			assert.Zero(t, p.Completions)
			assert.Zero(t, p.NewAssignments)
		}
		assert.Zero(t, trends.TotalCompletions)
	})

	t.Run("異常系: 開始が終了より後", func(t *testing.T) {
		start := time.Now()
		end := start.AddDate(0, 0, -1)
		_, err := svc.GetCompletionTrends(ctx, tenant.TenantID, start, end)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

// --- Test GetUserProgressReport ---
func Test_analyticsService_GetUserProgressReport(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	assignSvc := newAssignmentTestService(db)
	svc := newAnalyticsTestService(db)

	tenant := createTestTenantRow(t, db)
	admin := createTestUserRow(t, db, tenant.TenantID, model.RoleTenantAdmin)
	employee := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	flow := createTestFlowRow(t, db, tenant.TenantID)
	m1 := createTestModuleRow(t, db, flow.FlowID, 1, model.ContentTypeText, nil)
	createTestModuleRow(t, db, flow.FlowID, 2, model.ContentTypeText, nil)

	a, err := assignSvc.CreateAssignment(ctx, tenant.TenantID, &admin.UserID, &model.CreateAssignmentRequest{FlowID: flow.FlowID, UserID: employee.UserID})
	require.NoError(t, err)
	_, err = assignSvc.CompleteModule(ctx, tenant.TenantID, a.AssignmentID, m1.ModuleID, employee.UserID, &model.CompleteModuleRequest{TimeSpentMinutes: 25})
	require.NoError(t, err)

	t.Run("正常系: ユーザーレポートに進捗と時間が集計される", func(t *testing.T) {
		report, err := svc.GetUserProgressReport(ctx, tenant.TenantID, employee.UserID)
		require.NoError(t, err)

		assert.Equal(t, employee.UserID, report.UserID)
		assert.Equal(t, employee.FullName(), report.UserName)
		assert.Equal(t, 1, report.TotalAssignments)
		assert.Equal(t, 0, report.CompletedAssignments)
		assert.Equal(t, 1, report.InProgressAssignments)
		assert.InDelta(t, 50.0, report.OverallProgressPercentage, 0.01)
		assert.Equal(t, 25, report.TotalTimeSpentMinutes)
		require.Len(t, report.Assignments, 1)
	})

	t.Run("異常系: 存在しないユーザー", func(t *testing.T) {
		_, err := svc.GetUserProgressReport(ctx, tenant.TenantID, uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

// --- Test 平均完了所要日数 ---
func Test_analyticsService_AvgCompletionDays(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newAnalyticsTestService(db)

	tenant := createTestTenantRow(t, db)
	empA := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	empB := createTestUserRow(t, db, tenant.TenantID, model.RoleEmployee)
	flow := createTestFlowRow(t, db, tenant.TenantID)

	now := time.Now()
	insertCompleted := func(t *testing.T, userID uuid.UUID, took time.Duration) {
		t.Helper()
		completed := now
		require.NoError(t, db.Create(&model.Assignment{
			AssignmentID:         uuid.New(),
			TenantID:             tenant.TenantID,
			FlowID:               flow.FlowID,
			UserID:               userID,
			Status:               model.StatusCompleted,
			CompletionPercentage: 100,
			AssignedAt:           now.Add(-took),
			CompletedAt:          &completed,
		}).Error)
	}

	t.Run("正常系: 日未満はアサインメントごとに切り捨てる", func(t *testing.T) {
		// 36時間で完了 → 1.5日ではなく1日
		insertCompleted(t, empA.UserID, 36*time.Hour)

		overview, err := svc.GetDashboardOverview(ctx, tenant.TenantID)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, overview.AvgCompletionTimeDays, 0.001)
	})

	t.Run("正常系: 切り捨て後の日数を平均する", func(t *testing.T) {
		// 60時間 → 2日。平均は (1 + 2) / 2 = 1.5
		insertCompleted(t, empB.UserID, 60*time.Hour)

		overview, err := svc.GetDashboardOverview(ctx, tenant.TenantID)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, overview.AvgCompletionTimeDays, 0.001)

		analytics, err := svc.GetFlowAnalytics(ctx, tenant.TenantID, flow.FlowID)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, analytics.AvgCompletionTimeDays, 0.001)
	})
}
