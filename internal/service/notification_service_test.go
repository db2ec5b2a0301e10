// internal/service/notification_service_test.go
package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubMailer は送信内容を記録するテスト用Mailer
type stubMailer struct {
	sent    []stubMail
	failErr error
}

type stubMail struct {
	to      string
	subject string
	body    string
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, stubMail{to: to, subject: subject, body: body})
	return nil
}

func createTestEmailLogRow(t *testing.T, db *gorm.DB, tenantID uuid.UUID, emailType string, isSent bool) *model.EmailLog {
	t.Helper()
	entry := &model.EmailLog{
		LogID:        uuid.New(),
		TenantID:     &tenantID,
		ToEmail:      uuid.NewString()[:8] + "@example.com",
		ToName:       "山田 太郎",
		Subject:      "テストメール",
		EmailType:    emailType,
		TemplateName: emailType,
		TemplateData: model.JSONMap{
			"UserName":     "山田 太郎",
			"FlowTitle":    "入社オリエンテーション",
			"AssignmentID": uuid.NewString(),
			"TenantName":   "テスト株式会社",
			"CompletedAt":  "2026-08-01 10:00",
			"BaseURL":      "http://localhost:3000",
		},
		IsSent: isSent,
	}
	if !isSent {
		entry.ErrorMessage = "smtp: connection refused"
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

// --- Test ListEmailLogs ---
func Test_notificationService_ListEmailLogs(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := NewNotificationService(db, &stubMailer{}, repository.NewGormEmailLogRepository())

	tenant := createTestTenantRow(t, db)
	createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeAssignmentCreated, true)
	createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeAssignmentCreated, false)
	createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeUserInvitation, true)

	// 別テナントのログは見えない
	other := createTestTenantRow(t, db)
	createTestEmailLogRow(t, db, other.TenantID, model.EmailTypeUserInvitation, true)

	t.Run("正常系: フィルタなし", func(t *testing.T) {
		list, err := svc.ListEmailLogs(ctx, tenant.TenantID, &model.EmailLogFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), list.Total)
		assert.Len(t, list.Items, 3)
		assert.Equal(t, 1, list.Page)
		assert.Equal(t, 20, list.Size)
	})

	t.Run("正常系: 種別と送信状態で絞り込み", func(t *testing.T) {
		emailType := model.EmailTypeAssignmentCreated
		isSent := false
		list, err := svc.ListEmailLogs(ctx, tenant.TenantID, &model.EmailLogFilter{
			EmailType: &emailType,
			IsSent:    &isSent,
		})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.False(t, list.Items[0].IsSent)
		assert.Equal(t, model.EmailTypeAssignmentCreated, list.Items[0].EmailType)
	})

	t.Run("正常系: ページング", func(t *testing.T) {
		list, err := svc.ListEmailLogs(ctx, tenant.TenantID, &model.EmailLogFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), list.Total)
		assert.Len(t, list.Items, 1) // 3件を2件ずつ → 2ページ目は1件
		assert.Equal(t, 2, list.Page)
	})
}

// --- Test GetEmailStats ---
func Test_notificationService_GetEmailStats(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := NewNotificationService(db, &stubMailer{}, repository.NewGormEmailLogRepository())

	tenant := createTestTenantRow(t, db)

	t.Run("正常系: ログなしは成功率0", func(t *testing.T) {
		stats, err := svc.GetEmailStats(ctx, tenant.TenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.TotalSent)
		assert.Equal(t, int64(0), stats.TotalFailed)
		assert.Zero(t, stats.SuccessRate)
	})

	t.Run("正常系: 種別ごとの集計と成功率", func(t *testing.T) {
		createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeAssignmentCreated, true)
		createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeAssignmentCreated, true)
		createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeUserInvitation, true)
		createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeUserInvitation, false)

		stats, err := svc.GetEmailStats(ctx, tenant.TenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalSent)
		assert.Equal(t, int64(1), stats.TotalFailed)
		assert.InDelta(t, 75.0, stats.SuccessRate, 0.01)
		assert.Equal(t, int64(2), stats.ByType[model.EmailTypeAssignmentCreated])
		assert.Equal(t, int64(2), stats.ByType[model.EmailTypeUserInvitation])
	})
}

// --- Test RetryEmail ---
func Test_notificationService_RetryEmail(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)

	tenant := createTestTenantRow(t, db)

	t.Run("正常系: 再送成功でis_sentが立つ", func(t *testing.T) {
		mailer := &stubMailer{}
		svc := NewNotificationService(db, mailer, repository.NewGormEmailLogRepository())
		failed := createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeAssignmentCreated, false)

		entry, err := svc.RetryEmail(ctx, tenant.TenantID, failed.LogID)
		require.NoError(t, err)
		assert.True(t, entry.IsSent)
		require.NotNil(t, entry.SentAt)
		assert.Empty(t, entry.ErrorMessage)

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, failed.ToEmail, mailer.sent[0].to)
		assert.Equal(t, failed.Subject, mailer.sent[0].subject)
		// 記録済みのテンプレートデータから本文が再構築される
		assert.True(t, strings.Contains(mailer.sent[0].body, "入社オリエンテーション"))
	})

	t.Run("正常系: 再送失敗はエラーメッセージのみ更新", func(t *testing.T) {
		mailer := &stubMailer{failErr: errors.New("smtp: still down")}
		svc := NewNotificationService(db, mailer, repository.NewGormEmailLogRepository())
		failed := createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeUserInvitation, false)

		entry, err := svc.RetryEmail(ctx, tenant.TenantID, failed.LogID)
		require.NoError(t, err)
		assert.False(t, entry.IsSent)
		assert.Equal(t, "smtp: still down", entry.ErrorMessage)
	})

	t.Run("異常系: 送信済みメールはErrInvalidInput", func(t *testing.T) {
		svc := NewNotificationService(db, &stubMailer{}, repository.NewGormEmailLogRepository())
		sent := createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeAssignmentCompleted, true)

		_, err := svc.RetryEmail(ctx, tenant.TenantID, sent.LogID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "ALREADY_SENT", appErr.Code)
	})

	t.Run("異常系: 未知のテンプレート名は再送不可", func(t *testing.T) {
		svc := NewNotificationService(db, &stubMailer{}, repository.NewGormEmailLogRepository())
		broken := createTestEmailLogRow(t, db, tenant.TenantID, model.EmailTypeAssignmentCreated, false)
		require.NoError(t, db.Model(&model.EmailLog{}).
			Where("log_id = ?", broken.LogID).
			Update("template_name", "legacy_template").Error)

		_, err := svc.RetryEmail(ctx, tenant.TenantID, broken.LogID)
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INVALID_TEMPLATE", appErr.Code)
	})

	t.Run("異常系: 他テナントのログはErrNotFound", func(t *testing.T) {
		svc := NewNotificationService(db, &stubMailer{}, repository.NewGormEmailLogRepository())
		other := createTestTenantRow(t, db)
		foreign := createTestEmailLogRow(t, db, other.TenantID, model.EmailTypeAssignmentCreated, false)

		_, err := svc.RetryEmail(ctx, tenant.TenantID, foreign.LogID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

// --- Test NotificationDispatcher ---
func Test_notificationDispatcher_SendAssignmentCompleted(t *testing.T) {
	t.Run("正常系: 管理者不明なら何も送らない", func(t *testing.T) {
		// adminがnilの場合は早期リターンし、goroutineも起動しない
		d := &NotificationDispatcher{}
		d.SendAssignmentCompleted(context.Background(), nil, nil, nil, nil, nil)
	})
}
