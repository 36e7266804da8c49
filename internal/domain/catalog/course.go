package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseType string

const (
	CourseTypeCertifiante     CourseType = "CERTIFIANTE"
	CourseTypeProfessionnelle CourseType = "PROFESSIONNELLE"
	CourseTypeAcademique      CourseType = "ACADEMIQUE"
	CourseTypeInterne         CourseType = "INTERNE"
)

type PricingType string

const (
	PricingFree   PricingType = "FREE"
	PricingPaid   PricingType = "PAID"
	PricingHybrid PricingType = "HYBRID"
)

type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusReview    CourseStatus = "REVIEW"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

const DefaultCurrency = "XOF"

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Slug string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
}

func (Category) TableName() string { return "category" }

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"column:title;not null" json:"title"`
	Slug         string     `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Subtitle     string     `gorm:"column:subtitle" json:"subtitle,omitempty"`
	Description  string     `gorm:"column:description;type:text" json:"description,omitempty"`
	CategoryID   *uuid.UUID `gorm:"type:uuid;column:category_id;index" json:"category_id,omitempty"`
	InstructorID uuid.UUID  `gorm:"type:uuid;column:instructor_id;not null;index" json:"instructor_id"`

	CourseType  CourseType   `gorm:"column:course_type;not null;default:'PROFESSIONNELLE'" json:"course_type"`
	PricingType PricingType  `gorm:"column:pricing_type;not null;default:'FREE'" json:"pricing_type"`
	PriceMinor  int64        `gorm:"column:price_minor;not null;default:0" json:"price_minor"`
	Currency    string       `gorm:"column:currency;not null;default:'XOF'" json:"currency"`
	Status      CourseStatus `gorm:"column:status;not null;default:'DRAFT';index" json:"status"`
	PublishedAt *time.Time   `gorm:"column:published_at" json:"published_at,omitempty"`

	CompanyOnly         bool       `gorm:"column:company_only;not null;default:false" json:"company_only"`
	CompanyID           *uuid.UUID `gorm:"type:uuid;column:company_id;index" json:"company_id,omitempty"`
	PreviewMediaAssetID *uuid.UUID `gorm:"type:uuid;column:preview_media_asset_id" json:"preview_media_asset_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Normalize()
	return nil
}

// Normalize applies the pricing and currency rules: FREE courses cost nothing.
func (c *Course) Normalize() {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Status == "" {
		c.Status = CourseStatusDraft
	}
	if c.PricingType == "" {
		c.PricingType = PricingFree
	}
	if c.CourseType == "" {
		c.CourseType = CourseTypeProfessionnelle
	}
	if c.PricingType == PricingFree || c.PriceMinor < 0 {
		c.PriceMinor = 0
	}
}

// IsPublished reports whether learners may consume the course.
func (c *Course) IsPublished() bool {
	return c != nil && c.Status == CourseStatusPublished
}

func (c CourseType) Valid() bool {
	switch c {
	case CourseTypeCertifiante, CourseTypeProfessionnelle, CourseTypeAcademique, CourseTypeInterne:
		return true
	}
	return false
}

func (p PricingType) Valid() bool {
	switch p {
	case PricingFree, PricingPaid, PricingHybrid:
		return true
	}
	return false
}
