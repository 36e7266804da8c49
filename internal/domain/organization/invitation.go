package organization

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultInvitationTTL = 7 * 24 * time.Hour

// CompanyInvitation lets a company admin add a user by email. There is one
// row per (company, email); inviting again rotates the token.
type CompanyInvitation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;column:company_id;not null;uniqueIndex:idx_company_invitation_email,priority:1" json:"company_id"`
	Email       string     `gorm:"column:email;not null;uniqueIndex:idx_company_invitation_email,priority:2" json:"email"`
	Token       uuid.UUID  `gorm:"type:uuid;column:token;not null;uniqueIndex" json:"token"`
	InvitedByID *uuid.UUID `gorm:"type:uuid;column:invited_by_id" json:"invited_by_id,omitempty"`
	ExpiresAt   time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	AcceptedAt  *time.Time `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (CompanyInvitation) TableName() string { return "company_invitation" }

func (i *CompanyInvitation) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Token == uuid.Nil {
		i.Token = uuid.New()
	}
	i.Email = NormalizeEmail(i.Email)
	return nil
}

func (i *CompanyInvitation) Accepted() bool { return i != nil && i.AcceptedAt != nil }

// Expired is true once now reaches ExpiresAt.
func (i *CompanyInvitation) Expired(now time.Time) bool {
	return i != nil && !now.Before(i.ExpiresAt)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
