package model

import (
	"time"

	"github.com/google/uuid"
)

// メール種別
const (
	EmailTypeAssignmentCreated   = "assignment_created"
	EmailTypeAssignmentCompleted = "assignment_completed"
	EmailTypeUserInvitation      = "user_invitation"
)

// EmailLog は送信したメールの記録です。
// 送信失敗もここに記録されるだけで、呼び出し元の操作を失敗させない。
// 自動リトライはしない(明示的なリトライ操作のみ)。
type EmailLog struct {
	LogID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"log_id"`
	TenantID     *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id,omitempty"` // システムメールはnull
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ToEmail      string     `gorm:"not null;index" json:"to_email"`
	ToName       string     `json:"to_name,omitempty"`
	Subject      string     `gorm:"not null" json:"subject"`
	EmailType    string     `gorm:"not null;index" json:"email_type"`
	TemplateName string     `json:"template_name,omitempty"`
	TemplateData JSONMap    `gorm:"type:json" json:"template_data,omitempty"`
	IsSent       bool       `gorm:"not null;default:false" json:"is_sent"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ExternalID   string     `json:"external_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}

// EmailLogFilter はメールログ一覧のフィルタです
type EmailLogFilter struct {
	EmailType *string
	IsSent    *bool
	Page      int
	PageSize  int
}

// EmailLogList はページング付きのメールログ一覧レスポンス
type EmailLogList struct {
	Items []*EmailLog `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// EmailStats はテナント単位のメール送信統計
type EmailStats struct {
	TotalSent   int64            `json:"total_sent"`
	TotalFailed int64            `json:"total_failed"`
	SuccessRate float64          `json:"success_rate"`
	ByType      map[string]int64 `json:"by_type"`
}
