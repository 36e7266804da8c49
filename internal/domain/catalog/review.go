package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a learner's rating of a course. A learner has at most one review
// per course; submitting again replaces it.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;column:course_id;not null;uniqueIndex:idx_review_course_user,priority:1" json:"course_id"`
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_review_course_user,priority:2;index" json:"user_id"`
	Rating    int       `gorm:"column:rating;not null;default:5" json:"rating"`
	Comment   string    `gorm:"column:comment;type:text" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string { return "review" }

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Rating == 0 {
		r.Rating = MaxRating
	}
	return nil
}

func ValidRating(r int) bool { return r >= MinRating && r <= MaxRating }

// RatingSummary aggregates the reviews of one course or instructor.
type RatingSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}
