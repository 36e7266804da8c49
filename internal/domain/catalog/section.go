package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseSection struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;column:course_id;not null;uniqueIndex:idx_course_section_position,priority:1" json:"course_id"`
	Title    string    `gorm:"column:title;not null" json:"title"`
	Position int       `gorm:"column:position;not null;uniqueIndex:idx_course_section_position,priority:2" json:"position"`
}

func (CourseSection) TableName() string { return "course_section" }

func (s *CourseSection) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
