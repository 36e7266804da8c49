package enrollment

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonProgress is unique per (enrollment, lesson). Completed implies
// ProgressPercent == 100; the converse does not hold.
type LessonProgress struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID    uuid.UUID `gorm:"type:uuid;column:enrollment_id;not null;uniqueIndex:idx_lesson_progress_enrollment_lesson,priority:1" json:"enrollment_id"`
	LessonID        uuid.UUID `gorm:"type:uuid;column:lesson_id;not null;uniqueIndex:idx_lesson_progress_enrollment_lesson,priority:2" json:"lesson_id"`
	ProgressPercent int       `gorm:"column:progress_percent;not null;default:0" json:"progress_percent"`
	LastPositionSec int       `gorm:"column:last_position_sec;not null;default:0" json:"last_position_sec"`
	Completed       bool      `gorm:"column:completed;not null;default:false" json:"completed"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }

func (p *LessonProgress) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ClampPercent bounds a progress value to [0, 100].
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ClampPosition bounds a playback position to >= 0. Seeking backwards is legal.
func ClampPosition(sec int) int {
	if sec < 0 {
		return 0
	}
	return sec
}

// Summary is the course-level progress aggregate of one enrollment.
type Summary struct {
	CompletedLessons int `json:"completed_lessons"`
	TotalLessons     int `json:"total_lessons"`
	ProgressPercent  int `json:"progress_percent"`
}

// Summarize computes the rounded mean of per-lesson percentages over all
// lessons of the course. Lessons missing from rows count as 0%.
func Summarize(totalLessons int, rows []*LessonProgress) Summary {
	out := Summary{TotalLessons: totalLessons}
	if totalLessons <= 0 {
		return out
	}
	sum := 0
	for _, r := range rows {
		if r == nil {
			continue
		}
		sum += ClampPercent(r.ProgressPercent)
		if r.Completed {
			out.CompletedLessons++
		}
	}
	out.ProgressPercent = int(math.Round(float64(sum) / float64(totalLessons)))
	return out
}
