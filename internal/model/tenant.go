package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant は組織(すべてのデータとアクセス制御のスコープ境界)を表します
type Tenant struct {
	TenantID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	Name         string         `gorm:"not null" json:"name"`
	Slug         string         `gorm:"uniqueIndex;not null" json:"slug"`
	Subdomain    *string        `gorm:"uniqueIndex" json:"subdomain,omitempty"`
	ContactEmail string         `json:"contact_email,omitempty"`
	Plan         string         `gorm:"not null;default:'free'" json:"plan"` // free, starter, business, enterprise
	MaxUsers     int            `gorm:"not null;default:10" json:"max_users"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	Settings     JSONMap        `gorm:"type:json" json:"settings"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用

	// GORM用のリレーション (JSONには含めない)
	Users []User `gorm:"foreignKey:TenantID" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}

type ContextKey string

const (
	TenantIDKey ContextKey = "tenantID"
	UserIDKey   ContextKey = "userID"
	RoleKey     ContextKey = "role"
)

// CreateTenantRequest はテナント作成リクエストDTO
type CreateTenantRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Slug         string  `json:"slug" validate:"required,min=1,max=100"`
	Subdomain    *string `json:"subdomain,omitempty" validate:"omitempty,min=1,max=100"`
	ContactEmail string  `json:"contact_email,omitempty" validate:"omitempty,email"`
	Plan         string  `json:"plan,omitempty" validate:"omitempty,oneof=free starter business enterprise"`

	// 初期管理者。指定された場合、テナントと同一トランザクションで tenant_admin を登録する。
	AdminEmail     string `json:"admin_email,omitempty" validate:"omitempty,email"`
	AdminPassword  string `json:"admin_password,omitempty" validate:"required_with=AdminEmail,omitempty,min=8,max=72"`
	AdminFirstName string `json:"admin_first_name,omitempty" validate:"required_with=AdminEmail,omitempty,min=1,max=100"`
	AdminLastName  string `json:"admin_last_name,omitempty" validate:"required_with=AdminEmail,omitempty,min=1,max=100"`
}

// UpdateTenantRequest はテナント更新(部分)リクエストDTO
type UpdateTenantRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	IsActive     *bool   `json:"is_active,omitempty"`
	Settings     JSONMap `json:"settings,omitempty"`
}

// TenantResponse はクライアントに返すテナント情報の構造体
type TenantResponse struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"plan"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantStats はテナント単位の利用状況サマリ
type TenantStats struct {
	TotalUsers       int64 `json:"total_users"`
	ActiveUsers      int64 `json:"active_users"`
	TotalFlows       int64 `json:"total_flows"`
	TotalAssignments int64 `json:"total_assignments"`
}
