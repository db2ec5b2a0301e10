package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role はユーザーの権限を表す閉じた列挙型です。
// 認可チェックでは文字列比較ではなく必ずこの型の定数とswitchで判定すること。
type Role string

const (
	RoleEmployee    Role = "employee"
	RoleTenantAdmin Role = "tenant_admin"
	RoleSuperAdmin  Role = "super_admin"
)

// Valid は既知のロールかどうかを返します
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleTenantAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin はテナント管理者以上かどうかを返します
func (r Role) IsAdmin() bool {
	switch r {
	case RoleTenantAdmin, RoleSuperAdmin:
		return true
	case RoleEmployee:
		return false
	}
	return false
}

// User はテナントに属するユーザーを表します。ユーザーは必ず1つのテナントに属します。
type User struct {
	UserID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	TenantID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	FirstName    string         `gorm:"not null" json:"first_name"`
	LastName     string         `gorm:"not null" json:"last_name"`
	JobTitle     string         `json:"job_title,omitempty"`
	Department   string         `json:"department,omitempty"`
	Role         Role           `gorm:"type:varchar(50);not null;default:'employee'" json:"role"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用
}

func (User) TableName() string {
	return "users"
}

// FullName は表示用のフルネームを返します
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// CreateUserRequest はユーザー作成リクエストDTO
type CreateUserRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	FirstName  string `json:"first_name" validate:"required,min=1,max=100"`
	LastName   string `json:"last_name" validate:"required,min=1,max=100"`
	JobTitle   string `json:"job_title,omitempty" validate:"omitempty,max=100"`
	Department string `json:"department,omitempty" validate:"omitempty,max=100"`
	Role       Role   `json:"role,omitempty" validate:"omitempty,oneof=employee tenant_admin super_admin"`
}

// UpdateUserRequest はユーザー更新(部分)リクエストDTO
type UpdateUserRequest struct {
	FirstName  *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName   *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	JobTitle   *string `json:"job_title,omitempty" validate:"omitempty,max=100"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Role       *Role   `json:"role,omitempty" validate:"omitempty,oneof=employee tenant_admin super_admin"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// LoginRequest はログインAPIのリクエストボディ
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse はログイン成功時のレスポンス
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// JWTCustomClaims はJWTに含めるカスタムクレーム（ペイロード）
type JWTCustomClaims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
