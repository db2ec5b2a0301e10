package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"go_5_onboard_keep/internal/config"
	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// メール本文のテンプレート。件名・本文ともプレーンテキスト。
var (
	assignmentCreatedTmpl = template.Must(template.New("assignment_created").Parse(
		`{{.UserName}} さん

オンボーディングフロー「{{.FlowTitle}}」が割り当てられました。
{{if .DueDate}}期限: {{.DueDate}}
{{end}}
以下のリンクからフローを開始してください:
{{.BaseURL}}/assignments/{{.AssignmentID}}
`))

	assignmentCompletedTmpl = template.Must(template.New("assignment_completed").Parse(
		`{{.UserName}} さんがオンボーディングフロー「{{.FlowTitle}}」を完了しました。

完了日時: {{.CompletedAt}}
進捗の詳細は管理画面から確認できます:
{{.BaseURL}}/assignments/{{.AssignmentID}}
`))

	userInvitationTmpl = template.Must(template.New("user_invitation").Parse(
		`{{.UserName}} さん

{{.TenantName}} のオンボーディングポータルに招待されました。
登録されたメールアドレスでログインしてください:
{{.BaseURL}}/login
`))
)

// NotificationDispatcher はドメインイベントに応じたメール送信と
// EmailLogへの記録を行います。送信失敗は記録されるだけで呼び出し元には伝播しません。
type NotificationDispatcher struct {
	db           *gorm.DB
	mailer       Mailer
	emailLogRepo repository.EmailLogRepository
	cfg          *config.Config
}

func NewNotificationDispatcher(db *gorm.DB, mailer Mailer, emailLogRepo repository.EmailLogRepository, cfg *config.Config) *NotificationDispatcher {
	return &NotificationDispatcher{
		db:           db,
		mailer:       mailer,
		emailLogRepo: emailLogRepo,
		cfg:          cfg,
	}
}

// SendAssignmentCreated はアサイン通知を従業員へ送信します(fire-and-forget)
func (d *NotificationDispatcher) SendAssignmentCreated(ctx context.Context, tenant *model.Tenant, user *model.User, flow *model.Flow, assignment *model.Assignment) {
	data := model.JSONMap{
		"UserName":     user.FullName(),
		"FlowTitle":    flow.Title,
		"AssignmentID": assignment.AssignmentID.String(),
		"BaseURL":      d.cfg.App.BaseURL,
	}
	if assignment.DueDate != nil {
		data["DueDate"] = assignment.DueDate.Format("2006-01-02")
	}
	subject := fmt.Sprintf("【%s】新しいオンボーディングフローが割り当てられました", tenant.Name)
	d.dispatch(ctx, tenant, user, user.Email, subject, model.EmailTypeAssignmentCreated, assignmentCreatedTmpl, data)
}

// SendAssignmentCompleted は完了通知をアサインした管理者へ送信します(fire-and-forget)。
// アサインした管理者が不明な場合は送信しません。
func (d *NotificationDispatcher) SendAssignmentCompleted(ctx context.Context, tenant *model.Tenant, employee *model.User, admin *model.User, flow *model.Flow, assignment *model.Assignment) {
	if admin == nil {
		return
	}
	completedAt := ""
	if assignment.CompletedAt != nil {
		completedAt = assignment.CompletedAt.Format("2006-01-02 15:04")
	}
	data := model.JSONMap{
		"UserName":     employee.FullName(),
		"FlowTitle":    flow.Title,
		"AssignmentID": assignment.AssignmentID.String(),
		"CompletedAt":  completedAt,
		"BaseURL":      d.cfg.App.BaseURL,
	}
	subject := fmt.Sprintf("【%s】%s さんがフローを完了しました", tenant.Name, employee.FullName())
	d.dispatch(ctx, tenant, employee, admin.Email, subject, model.EmailTypeAssignmentCompleted, assignmentCompletedTmpl, data)
}

// SendUserInvitation は新規ユーザーへの招待メールを送信します(fire-and-forget)
func (d *NotificationDispatcher) SendUserInvitation(ctx context.Context, tenant *model.Tenant, user *model.User) {
	data := model.JSONMap{
		"UserName":   user.FullName(),
		"TenantName": tenant.Name,
		"BaseURL":    d.cfg.App.BaseURL,
	}
	subject := fmt.Sprintf("【%s】オンボーディングポータルへの招待", tenant.Name)
	d.dispatch(ctx, tenant, user, user.Email, subject, model.EmailTypeUserInvitation, userInvitationTmpl, data)
}

// dispatch はテンプレートを描画し、非同期でメールを送信してEmailLogに記録します。
// 呼び出し元のトランザクションがコミットされた後に呼ぶこと。
func (d *NotificationDispatcher) dispatch(ctx context.Context, tenant *model.Tenant, user *model.User, toEmail, subject, emailType string, tmpl *template.Template, data model.JSONMap) {
	// リクエストのキャンセルに巻き込まれないよう切り離したコンテキストで送信する
	sendCtx := context.WithoutCancel(ctx)

	go func() {
		logger := middleware.GetLogger(sendCtx)

		var body bytes.Buffer
		renderErr := tmpl.Execute(&body, map[string]interface{}(data))

		entry := &model.EmailLog{
			LogID:        uuid.New(),
			ToEmail:      toEmail,
			ToName:       user.FullName(),
			Subject:      subject,
			EmailType:    emailType,
			TemplateName: tmpl.Name(),
			TemplateData: data,
		}
		if tenant != nil {
			id := tenant.TenantID
			entry.TenantID = &id
		}
		if user != nil {
			id := user.UserID
			entry.UserID = &id
		}

		if renderErr != nil {
			logger.Error("Failed to render email template", "error", renderErr, "template", tmpl.Name())
			entry.ErrorMessage = renderErr.Error()
		} else if sendErr := d.mailer.Send(sendCtx, toEmail, subject, body.String()); sendErr != nil {
			logger.Error("Failed to send notification email", "error", sendErr, "to", toEmail, "email_type", emailType)
			entry.ErrorMessage = sendErr.Error()
		} else {
			now := time.Now()
			entry.IsSent = true
			entry.SentAt = &now
		}

		if err := d.emailLogRepo.Create(sendCtx, d.db, entry); err != nil {
			logger.Error("Failed to record email log", "error", err, "email_type", emailType)
		}
	}()
}

// NotificationService はメールログの照会とリトライを提供します
type NotificationService interface {
	ListEmailLogs(ctx context.Context, tenantID uuid.UUID, filter *model.EmailLogFilter) (*model.EmailLogList, error)
	GetEmailStats(ctx context.Context, tenantID uuid.UUID) (*model.EmailStats, error)
	// RetryEmail は送信失敗したメールを同じ内容で再送します。
	RetryEmail(ctx context.Context, tenantID, logID uuid.UUID) (*model.EmailLog, error)
}

type notificationService struct {
	db           *gorm.DB
	mailer       Mailer
	emailLogRepo repository.EmailLogRepository
}

func NewNotificationService(db *gorm.DB, mailer Mailer, emailLogRepo repository.EmailLogRepository) NotificationService {
	return &notificationService{
		db:           db,
		mailer:       mailer,
		emailLogRepo: emailLogRepo,
	}
}

func (s *notificationService) ListEmailLogs(ctx context.Context, tenantID uuid.UUID, filter *model.EmailLogFilter) (*model.EmailLogList, error) {
	logs, total, err := s.emailLogRepo.List(ctx, s.db, tenantID, filter)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list email logs", "error", err)
		return nil, model.ErrInternalServer
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	return &model.EmailLogList{
		Items: logs,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

func (s *notificationService) GetEmailStats(ctx context.Context, tenantID uuid.UUID) (*model.EmailStats, error) {
	sent, failed, byType, err := s.emailLogRepo.CountByType(ctx, s.db, tenantID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to compute email stats", "error", err)
		return nil, model.ErrInternalServer
	}
	var successRate float64
	if sent+failed > 0 {
		successRate = float64(sent) / float64(sent+failed) * 100
	}
	return &model.EmailStats{
		TotalSent:   sent,
		TotalFailed: failed,
		SuccessRate: successRate,
		ByType:      byType,
	}, nil
}

func (s *notificationService) RetryEmail(ctx context.Context, tenantID, logID uuid.UUID) (*model.EmailLog, error) {
	logger := middleware.GetLogger(ctx)

	entry, err := s.emailLogRepo.FindByID(ctx, s.db, tenantID, logID)
	if err != nil {
		return nil, err
	}
	if entry.IsSent {
		logger.Warn("Retry requested for already sent email", "log_id", logID)
		return nil, model.NewAppError("ALREADY_SENT", "このメールは既に送信済みです。", "", model.ErrInvalidInput)
	}

	// 元のログを参照したまま本文を再構築できないため、件名をそのまま再送する。
	// テンプレートデータは記録済みのものを使う。
	tmpl := templateByName(entry.TemplateName)
	if tmpl == nil {
		logger.Error("Unknown template name on email log", "template", entry.TemplateName, "log_id", logID)
		return nil, model.NewAppError("INVALID_TEMPLATE", "このメールは再送できません。", "", model.ErrInvalidInput)
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, map[string]interface{}(entry.TemplateData)); err != nil {
		logger.Error("Failed to render email template for retry", "error", err, "log_id", logID)
		return nil, model.ErrInternalServer
	}

	updates := make(map[string]interface{})
	if sendErr := s.mailer.Send(ctx, entry.ToEmail, entry.Subject, body.String()); sendErr != nil {
		logger.Error("Retry send failed", "error", sendErr, "log_id", logID)
		updates["error_message"] = sendErr.Error()
	} else {
		now := time.Now()
		updates["is_sent"] = true
		updates["sent_at"] = &now
		updates["error_message"] = ""
	}

	if err := s.emailLogRepo.Update(ctx, s.db, logID, updates); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Failed to update email log after retry", "error", err, "log_id", logID)
		return nil, model.ErrInternalServer
	}

	return s.emailLogRepo.FindByID(ctx, s.db, tenantID, logID)
}

func templateByName(name string) *template.Template {
	switch name {
	case assignmentCreatedTmpl.Name():
		return assignmentCreatedTmpl
	case assignmentCompletedTmpl.Name():
		return assignmentCompletedTmpl
	case userInvitationTmpl.Name():
		return userInvitationTmpl
	}
	return nil
}
