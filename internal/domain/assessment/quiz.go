package assessment

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPassingScore = 70
	DefaultMaxAttempts  = 3
)

// Quiz is either attached to one lesson or, with LessonID nil, is the course's
// final quiz.
type Quiz struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID  `gorm:"type:uuid;column:course_id;not null;index" json:"course_id"`
	LessonID     *uuid.UUID `gorm:"type:uuid;column:lesson_id;uniqueIndex" json:"lesson_id,omitempty"`
	Title        string     `gorm:"column:title;not null" json:"title"`
	PassingScore int        `gorm:"column:passing_score;not null;default:70" json:"passing_score"`
	MaxAttempts  int        `gorm:"column:max_attempts;not null;default:3" json:"max_attempts"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.PassingScore <= 0 {
		q.PassingScore = DefaultPassingScore
	}
	if q.MaxAttempts <= 0 {
		q.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

func (q *Quiz) IsFinal() bool { return q != nil && q.LessonID == nil }

type Question struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID   uuid.UUID `gorm:"type:uuid;column:quiz_id;not null;index" json:"quiz_id"`
	Prompt   string    `gorm:"column:prompt;type:text;not null" json:"prompt"`
	Position int       `gorm:"column:position;not null;default:0" json:"position"`
}

func (Question) TableName() string { return "question" }

func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type Choice struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;column:question_id;not null;index" json:"question_id"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"column:is_correct;not null;default:false" json:"-"`
}

func (Choice) TableName() string { return "choice" }

func (c *Choice) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Attempt struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID       uuid.UUID  `gorm:"type:uuid;column:quiz_id;not null;index:idx_attempt_quiz_user,priority:1" json:"quiz_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;column:user_id;not null;index:idx_attempt_quiz_user,priority:2" json:"user_id"`
	StartedAt    time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	SubmittedAt  *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ScorePercent int        `gorm:"column:score_percent;not null;default:0" json:"score_percent"`
	Passed       bool       `gorm:"column:passed;not null;default:false" json:"passed"`
}

func (Attempt) TableName() string { return "attempt" }

func (a *Attempt) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	return nil
}

func (a *Attempt) Submitted() bool { return a != nil && a.SubmittedAt != nil }

type AttemptAnswer struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID        uuid.UUID  `gorm:"type:uuid;column:attempt_id;not null;uniqueIndex:idx_attempt_answer_question,priority:1" json:"attempt_id"`
	QuestionID       uuid.UUID  `gorm:"type:uuid;column:question_id;not null;uniqueIndex:idx_attempt_answer_question,priority:2" json:"question_id"`
	SelectedChoiceID *uuid.UUID `gorm:"type:uuid;column:selected_choice_id" json:"selected_choice_id,omitempty"`
}

func (AttemptAnswer) TableName() string { return "attempt_answer" }

func (a *AttemptAnswer) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Score returns round(100 * correct / total). A quiz with no questions scores 0.
func Score(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	if correct > total {
		correct = total
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
