package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentCategory はコンテンツブロックの分類です。
// slug はテナント内でユニーク(重複は Conflict)。
type ContentCategory struct {
	CategoryID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"category_id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index:idx_category_tenant_slug,unique" json:"tenant_id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"not null;index:idx_category_tenant_slug,unique" json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `gorm:"not null;default:'#6B7280'" json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ContentCategory) TableName() string {
	return "content_categories"
}

// ContentBlock は再利用可能なコンテンツです。モジュールから任意で参照されます。
type ContentBlock struct {
	BlockID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"block_id"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CategoryID  *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description,omitempty"`
	ContentType ContentType    `gorm:"type:varchar(50);not null" json:"content_type"`
	ContentText string         `json:"content_text,omitempty"`
	ContentURL  string         `json:"content_url,omitempty"`
	Metadata    JSONMap        `gorm:"type:json" json:"metadata,omitempty"`
	Tags        string         `json:"tags,omitempty"` // カンマ区切り(検索用)
	IsPublished bool           `gorm:"not null;default:false" json:"is_published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用

	Category *ContentCategory `gorm:"foreignKey:CategoryID;references:CategoryID" json:"-"`
}

func (ContentBlock) TableName() string {
	return "content_blocks"
}

// CreateCategoryRequest はカテゴリ作成リクエストDTO
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Slug        string `json:"slug" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// CreateContentBlockRequest はコンテンツブロック作成リクエストDTO
type CreateContentBlockRequest struct {
	CategoryID  *uuid.UUID  `json:"category_id,omitempty"`
	Title       string      `json:"title" validate:"required,min=1,max=200"`
	Description string      `json:"description,omitempty"`
	ContentType ContentType `json:"content_type" validate:"required,oneof=text image video pdf link"`
	ContentText string      `json:"content_text,omitempty"`
	ContentURL  string      `json:"content_url,omitempty" validate:"omitempty,url,max=500"`
	Metadata    JSONMap     `json:"metadata,omitempty"`
	Tags        string      `json:"tags,omitempty"`
	IsPublished bool        `json:"is_published,omitempty"`
}

// UpdateContentBlockRequest はコンテンツブロック更新(部分)リクエストDTO
type UpdateContentBlockRequest struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty"`
	ContentText *string    `json:"content_text,omitempty"`
	ContentURL  *string    `json:"content_url,omitempty" validate:"omitempty,url,max=500"`
	Metadata    JSONMap    `json:"metadata,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
	IsPublished *bool      `json:"is_published,omitempty"`
}
