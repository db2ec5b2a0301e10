package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentType はモジュール/コンテンツの種別です
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
	ContentTypePDF   ContentType = "pdf"
	ContentTypeQuiz  ContentType = "quiz"
	ContentTypeTask  ContentType = "task"
	ContentTypeLink  ContentType = "link"
)

// Flow はオンボーディングのカリキュラムテンプレート(順序付きモジュールの集合)です。
// 削除は論理削除+is_active=false。既存のAssignmentはModuleProgress経由で
// 当時のモジュール構成を保持するため、削除してもカスケードしない。
type Flow struct {
	FlowID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"flow_id"`
	TenantID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `json:"description,omitempty"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	IsTemplate   bool           `gorm:"not null;default:false" json:"is_template"`
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	Settings     JSONMap        `gorm:"type:json" json:"settings"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用

	// 関連 (Preload用)
	Modules []Module `gorm:"foreignKey:FlowID" json:"modules,omitempty"`
}

func (Flow) TableName() string {
	return "flows"
}

// Module はフロー内の1ステップです。削除は物理削除でModuleProgressへカスケードします
// (モジュール削除はオーサリング時の操作であるため)。
type Module struct {
	ModuleID                       uuid.UUID   `gorm:"type:uuid;primaryKey" json:"module_id"`
	FlowID                         uuid.UUID   `gorm:"type:uuid;not null;index" json:"flow_id"`
	Title                          string      `gorm:"not null" json:"title"`
	Description                    string      `json:"description,omitempty"`
	ContentType                    ContentType `gorm:"type:varchar(50);not null" json:"content_type"`
	ContentBlockID                 *uuid.UUID  `gorm:"type:uuid" json:"content_block_id,omitempty"`
	ContentText                    string      `json:"content_text,omitempty"`
	ContentURL                     string      `json:"content_url,omitempty"`
	Order                          int         `gorm:"column:display_order;not null;default:0" json:"order"`
	IsRequired                     bool        `gorm:"not null;default:true" json:"is_required"`
	RequiresCompletionConfirmation bool        `gorm:"not null;default:false" json:"requires_completion_confirmation"`
	QuizData                       *QuizData   `gorm:"type:json" json:"quiz_data,omitempty"`
	EstimatedMinutes               int         `gorm:"not null;default:0" json:"estimated_minutes"`
	CreatedAt                      time.Time   `json:"created_at"`
	UpdatedAt                      time.Time   `json:"updated_at"`
}

func (Module) TableName() string {
	return "modules"
}

// IsQuiz はクイズモジュールかどうかを返します
func (m *Module) IsQuiz() bool {
	return m.ContentType == ContentTypeQuiz
}

// CreateFlowRequest はフロー作成リクエストDTO
type CreateFlowRequest struct {
	Title        string  `json:"title" validate:"required,min=1,max=200"`
	Description  string  `json:"description,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	IsTemplate   bool    `json:"is_template,omitempty"`
	DisplayOrder int     `json:"display_order,omitempty"`
	Settings     JSONMap `json:"settings,omitempty"`
}

// UpdateFlowRequest はフロー更新(部分)リクエストDTO
type UpdateFlowRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	IsTemplate   *bool   `json:"is_template,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	Settings     JSONMap `json:"settings,omitempty"`
}

// CloneFlowRequest はフロー複製リクエストDTO
type CloneFlowRequest struct {
	NewTitle string `json:"new_title" validate:"required,min=1,max=200"`
}

// CreateModuleRequest はモジュール作成リクエストDTO
type CreateModuleRequest struct {
	Title                          string      `json:"title" validate:"required,min=1,max=200"`
	Description                    string      `json:"description,omitempty"`
	ContentType                    ContentType `json:"content_type" validate:"required,oneof=text video pdf quiz task link"`
	ContentBlockID                 *uuid.UUID  `json:"content_block_id,omitempty"`
	ContentText                    string      `json:"content_text,omitempty"`
	ContentURL                     string      `json:"content_url,omitempty" validate:"omitempty,url,max=500"`
	Order                          int         `json:"order,omitempty"`
	IsRequired                     *bool       `json:"is_required,omitempty"`
	RequiresCompletionConfirmation bool        `json:"requires_completion_confirmation,omitempty"`
	QuizData                       *QuizData   `json:"quiz_data,omitempty"`
	EstimatedMinutes               int         `json:"estimated_minutes,omitempty" validate:"omitempty,min=0"`
}

// UpdateModuleRequest はモジュール更新(部分)リクエストDTO
type UpdateModuleRequest struct {
	Title                          *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description                    *string    `json:"description,omitempty"`
	ContentBlockID                 *uuid.UUID `json:"content_block_id,omitempty"`
	ContentText                    *string    `json:"content_text,omitempty"`
	ContentURL                     *string    `json:"content_url,omitempty" validate:"omitempty,url,max=500"`
	Order                          *int       `json:"order,omitempty"`
	IsRequired                     *bool      `json:"is_required,omitempty"`
	RequiresCompletionConfirmation *bool      `json:"requires_completion_confirmation,omitempty"`
	QuizData                       *QuizData  `json:"quiz_data,omitempty"`
	EstimatedMinutes               *int       `json:"estimated_minutes,omitempty" validate:"omitempty,min=0"`
}

// ReorderModulesRequest はモジュール並び替えリクエストDTO。
// キーはモジュールID、値は新しい順序。
type ReorderModulesRequest struct {
	Orders map[uuid.UUID]int `json:"orders" validate:"required,min=1"`
}
