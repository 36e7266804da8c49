package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleLearner      Role = "LEARNER"
	RoleInstructor   Role = "INSTRUCTOR"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
	RoleSuperAdmin   Role = "SUPERADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleLearner, RoleInstructor, RoleCompanyAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"not null;column:password_hash" json:"-"`
	FullName     string    `gorm:"column:full_name" json:"full_name"`
	Role         Role      `gorm:"column:role;not null;default:'LEARNER';index" json:"role"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleLearner
	}
	return nil
}

// DisplayName prefers the full name and falls back to the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Email
}

func (u *User) IsSuperAdmin() bool { return u != nil && u.Role == RoleSuperAdmin }
