package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonType string

const (
	LessonVideo LessonType = "VIDEO"
	LessonText  LessonType = "TEXT"
	LessonFile  LessonType = "FILE"
	LessonQuiz  LessonType = "QUIZ"
	LessonLive  LessonType = "LIVE"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonVideo, LessonText, LessonFile, LessonQuiz, LessonLive:
		return true
	}
	return false
}

// Lesson belongs to a section; CourseID always mirrors the section's course.
type Lesson struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID    uuid.UUID  `gorm:"type:uuid;column:section_id;not null;uniqueIndex:idx_lesson_section_position,priority:1" json:"section_id"`
	CourseID     uuid.UUID  `gorm:"type:uuid;column:course_id;not null;index" json:"course_id"`
	Title        string     `gorm:"column:title;not null" json:"title"`
	Position     int        `gorm:"column:position;not null;uniqueIndex:idx_lesson_section_position,priority:2" json:"position"`
	LessonType   LessonType `gorm:"column:lesson_type;not null;default:'TEXT'" json:"lesson_type"`
	IsPreview    bool       `gorm:"column:is_preview;not null;default:false" json:"is_preview"`
	DurationSec  int        `gorm:"column:duration_sec;not null;default:0" json:"duration_sec"`
	Content      string     `gorm:"column:content;type:text" json:"content,omitempty"`
	VideoURL     string     `gorm:"column:video_url" json:"video_url,omitempty"`
	MediaAssetID *uuid.UUID `gorm:"type:uuid;column:media_asset_id;index" json:"media_asset_id,omitempty"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.LessonType == "" {
		l.LessonType = LessonText
	}
	return nil
}
