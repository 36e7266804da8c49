package enrollment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

type Source string

const (
	SourceB2C     Source = "B2C"
	SourceCompany Source = "COMPANY"
)

// Enrollment is unique per (user, course) and never hard-deleted.
type Enrollment struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_enrollment_user_course,priority:1" json:"user_id"`
	CourseID        uuid.UUID  `gorm:"type:uuid;column:course_id;not null;uniqueIndex:idx_enrollment_user_course,priority:2;index" json:"course_id"`
	Status          Status     `gorm:"column:status;not null;default:'ACTIVE';index" json:"status"`
	Source          Source     `gorm:"column:source;not null;default:'B2C'" json:"source"`
	CompanyID       *uuid.UUID `gorm:"type:uuid;column:company_id;index" json:"company_id,omitempty"`
	CurrentLessonID *uuid.UUID `gorm:"type:uuid;column:current_lesson_id" json:"current_lesson_id,omitempty"`
	EnrolledAt      time.Time  `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	UpdatedAt       time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }

func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	if e.Source == "" {
		e.Source = SourceB2C
	}
	return nil
}

// Grants reports whether the enrollment gives access to course content.
func (e *Enrollment) Grants() bool {
	return e != nil && e.Status != StatusCanceled
}
