package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus はアサインメントの状態です
type AssignmentStatus string

const (
	StatusNotStarted AssignmentStatus = "not_started"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusExpired    AssignmentStatus = "expired"
)

// Assignment はフローとユーザーの紐付けです。
// 同一(flow, user)の未完了アサインメントは同時に1件まで。
// completion_percentage は常に floor(100 * 完了済み進捗行 / 全進捗行)。
// completed_at は一度だけ刻印され、以後上書きされない。
type Assignment struct {
	AssignmentID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"assignment_id"`
	TenantID             uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	FlowID               uuid.UUID        `gorm:"type:uuid;not null;index" json:"flow_id"`
	UserID               uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Status               AssignmentStatus `gorm:"type:varchar(50);not null;default:'not_started'" json:"status"`
	AssignedAt           time.Time        `gorm:"not null" json:"assigned_at"`
	StartedAt            *time.Time       `json:"started_at,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	DueDate              *time.Time       `json:"due_date,omitempty"`
	CompletionPercentage int              `gorm:"not null;default:0" json:"completion_percentage"`
	AssignedBy           *uuid.UUID       `gorm:"type:uuid" json:"assigned_by,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`

	// 関連 (Preload用)
	Flow     *Flow            `gorm:"foreignKey:FlowID;references:FlowID" json:"flow,omitempty"`
	Progress []ModuleProgress `gorm:"foreignKey:AssignmentID" json:"progress,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// IsOverdue は期限超過かどうかの導出述語です(保存しない)
func (a *Assignment) IsOverdue(now time.Time) bool {
	if a.DueDate == nil {
		return false
	}
	return now.After(*a.DueDate) && a.Status != StatusCompleted
}

// ModuleProgress はアサインメント配下のモジュール単位の進捗記録です。
// アサインメント作成時にモジュールごとに一括生成され、後からフローへ追加された
// モジュールは進行中のアサインメントには反映されない。
type ModuleProgress struct {
	ProgressID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"progress_id"`
	AssignmentID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_progress_assignment_module,unique" json:"assignment_id"`
	ModuleID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_progress_assignment_module,unique" json:"module_id"`
	IsCompleted      bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeSpentMinutes int        `gorm:"not null;default:0" json:"time_spent_minutes"` // 単調増加のみ
	QuizScore        *int       `json:"quiz_score,omitempty"`
	QuizPassed       *bool      `json:"quiz_passed,omitempty"`
	QuizAnswers      JSONMap    `gorm:"type:json" json:"quiz_answers,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// 関連 (Preload用)
	Module *Module `gorm:"foreignKey:ModuleID;references:ModuleID" json:"module,omitempty"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

// CreateAssignmentRequest はアサインメント作成リクエストDTO
type CreateAssignmentRequest struct {
	FlowID  uuid.UUID  `json:"flow_id" validate:"required"`
	UserID  uuid.UUID  `json:"user_id" validate:"required"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// BulkAssignRequest は一括アサインリクエストDTO
type BulkAssignRequest struct {
	FlowID  uuid.UUID   `json:"flow_id" validate:"required"`
	UserIDs []uuid.UUID `json:"user_ids" validate:"required,min=1"`
	DueDate *time.Time  `json:"due_date,omitempty"`
}

// CompleteModuleRequest はモジュール完了リクエストDTO
type CompleteModuleRequest struct {
	Notes            string `json:"notes,omitempty"`
	TimeSpentMinutes int    `json:"time_spent_minutes,omitempty" validate:"omitempty,min=0"`
	Confirmed        bool   `json:"confirmed,omitempty"` // requires_completion_confirmation のモジュール用
}

// SubmitQuizRequest はクイズ回答送信リクエストDTO。
// キーは設問インデックスの文字列、値は選択した選択肢のインデックス。
type SubmitQuizRequest struct {
	Answers          map[string]int `json:"answers" validate:"required"`
	TimeSpentMinutes int            `json:"time_spent_minutes,omitempty" validate:"omitempty,min=0"`
}

// QuizResult はクイズ採点結果(一時的な計算結果で、これ自体は保存しない)
type QuizResult struct {
	Score          int  `json:"score"`
	Passed         bool `json:"passed"`
	PassingScore   int  `json:"passing_score"`
	CorrectAnswers int  `json:"correct_answers"`
	TotalQuestions int  `json:"total_questions"`
}

// CompletionSpan は完了所要時間の集計に使う射影(開始・完了のタイムスタンプのみ)
type CompletionSpan struct {
	AssignedAt  time.Time
	CompletedAt time.Time
}

// AssignmentFilter は一覧取得のフィルタとページングです
type AssignmentFilter struct {
	Status   *AssignmentStatus
	FlowID   *uuid.UUID
	UserID   *uuid.UUID
	Page     int
	PageSize int
}

// Offset はページングのオフセットを返します
func (f *AssignmentFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

// Limit は1ページあたりの件数を返します
func (f *AssignmentFilter) Limit() int {
	if f.PageSize < 1 {
		return 20
	}
	return f.PageSize
}

// EmployeeDashboard は従業員ダッシュボードの集計+明細です
type EmployeeDashboard struct {
	TotalAssignments int           `json:"total_assignments"`
	Completed        int           `json:"completed"`
	InProgress       int           `json:"in_progress"`
	NotStarted       int           `json:"not_started"`
	Overdue          int           `json:"overdue"`
	Assignments      []*Assignment `json:"assignments"`
}
