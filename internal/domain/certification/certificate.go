package certification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateTemplate struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	SignatureName  string    `gorm:"column:signature_name" json:"signature_name,omitempty"`
	SignatureTitle string    `gorm:"column:signature_title" json:"signature_title,omitempty"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (CertificateTemplate) TableName() string { return "certificate_template" }

func (t *CertificateTemplate) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IssuedCertificate is unique per (user, course).
type IssuedCertificate struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_issued_certificate_user_course,priority:1" json:"user_id"`
	CourseID         uuid.UUID  `gorm:"type:uuid;column:course_id;not null;uniqueIndex:idx_issued_certificate_user_course,priority:2" json:"course_id"`
	TemplateID       *uuid.UUID `gorm:"type:uuid;column:template_id" json:"template_id,omitempty"`
	IssuedAt         time.Time  `gorm:"column:issued_at;not null" json:"issued_at"`
	ScorePercent     int        `gorm:"column:score_percent;not null;default:0" json:"score_percent"`
	Serial           string     `gorm:"column:serial;not null;uniqueIndex" json:"serial"`
	VerificationHash uuid.UUID  `gorm:"type:uuid;column:verification_hash;not null;uniqueIndex" json:"verification_hash"`
	DocumentKey      string     `gorm:"column:document_key" json:"document_key,omitempty"`
}

func (IssuedCertificate) TableName() string { return "issued_certificate" }

func (c *IssuedCertificate) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Serial == "" {
		c.Serial = NewSerial()
	}
	if c.VerificationHash == uuid.Nil {
		c.VerificationHash = uuid.New()
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = time.Now().UTC()
	}
	return nil
}

// NewSerial returns 16 upper-case hex characters drawn from a random UUID.
func NewSerial() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:16])
}
