package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserToken pairs an issued access token with its refresh token. A refresh
// rotates the row; logout deletes it.
type UserToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	AccessToken  string    `gorm:"column:access_token;not null;uniqueIndex" json:"access_token"`
	RefreshToken string    `gorm:"column:refresh_token;not null;uniqueIndex" json:"refresh_token"`
	ExpiresAt    time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (UserToken) TableName() string { return "user_token" }

func (t *UserToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *UserToken) Expired(now time.Time) bool {
	return t == nil || !t.ExpiresAt.After(now)
}
