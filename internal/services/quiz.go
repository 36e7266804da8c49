package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/assessment"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type ChoiceInput struct {
	Text      string `validate:"required,max=500"`
	IsCorrect bool
}

type QuestionInput struct {
	Prompt  string        `validate:"required,max=2000"`
	Choices []ChoiceInput `validate:"min=2,dive"`
}

type QuizInput struct {
	Title        string `validate:"required,max=200"`
	LessonID     *uuid.UUID
	PassingScore int             `validate:"omitempty,min=1,max=100"`
	MaxAttempts  int             `validate:"omitempty,min=1,max=20"`
	Questions    []QuestionInput `validate:"min=1,dive"`
}

type ChoiceView struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

type QuestionView struct {
	ID       uuid.UUID    `json:"id"`
	Prompt   string       `json:"prompt"`
	Position int          `json:"position"`
	Choices  []ChoiceView `json:"choices"`
}

type AttemptView struct {
	Attempt   *types.Attempt `json:"attempt"`
	Quiz      *types.Quiz    `json:"quiz"`
	Questions []QuestionView `json:"questions"`
	Resumed   bool           `json:"resumed"`
}

type SubmitResult struct {
	Attempt     *types.Attempt     `json:"attempt"`
	Correct     int                `json:"correct"`
	Total       int                `json:"total"`
	Certificate *CertificateResult `json:"certificate,omitempty"`
}

type QuizService interface {
	CreateQuiz(ctx context.Context, courseID uuid.UUID, in QuizInput) (*types.Quiz, error)
	StartAttempt(ctx context.Context, quizID uuid.UUID) (*AttemptView, error)
	SubmitAttempt(ctx context.Context, attemptID uuid.UUID, answers map[uuid.UUID]uuid.UUID) (*SubmitResult, error)
}

type quizService struct {
	db          *gorm.DB
	log         *logger.Logger
	courses     repos.CourseRepo
	lessons     repos.LessonRepo
	enrollments repos.EnrollmentRepo
	quizzes     repos.QuizRepo
	questions   repos.QuestionRepo
	choices     repos.ChoiceRepo
	attempts    repos.AttemptRepo
	answers     repos.AttemptAnswerRepo
	certifier   CertificateIssuer
	now         func() time.Time
}

func NewQuizService(
	db *gorm.DB,
	log *logger.Logger,
	courses repos.CourseRepo,
	lessons repos.LessonRepo,
	enrollments repos.EnrollmentRepo,
	quizzes repos.QuizRepo,
	questions repos.QuestionRepo,
	choices repos.ChoiceRepo,
	attempts repos.AttemptRepo,
	answers repos.AttemptAnswerRepo,
	certifier CertificateIssuer,
) QuizService {
	return &quizService{
		db:          db,
		log:         log.With("service", "QuizService"),
		courses:     courses,
		lessons:     lessons,
		enrollments: enrollments,
		quizzes:     quizzes,
		questions:   questions,
		choices:     choices,
		attempts:    attempts,
		answers:     answers,
		certifier:   certifier,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateQuiz stores a quiz with its questions and choices. Without a lesson
// it becomes the course's final quiz, of which there is at most one.
func (s *quizService) CreateQuiz(ctx context.Context, courseID uuid.UUID, in QuizInput) (*types.Quiz, error) {
	const op = "Quiz.Create"
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	for i, q := range in.Questions {
		correct := 0
		for _, c := range q.Choices {
			if c.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, domainagg.Invalid(op, fmt.Sprintf("question %d must have exactly one correct choice", i+1))
		}
	}
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	quiz := &types.Quiz{
		ID:           uuid.New(),
		CourseID:     courseID,
		LessonID:     in.LessonID,
		Title:        in.Title,
		PassingScore: in.PassingScore,
		MaxAttempts:  in.MaxAttempts,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		course, err := s.courses.LockByID(dbc, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return domainagg.NotFound(op, "course not found")
		}
		if !ownsCourse(rd, course) {
			return domainagg.Forbidden(op, "course belongs to another instructor")
		}
		if in.LessonID != nil {
			lesson, err := s.lessons.GetByID(dbc, *in.LessonID)
			if err != nil {
				return err
			}
			if lesson == nil {
				return domainagg.NotFound(op, "lesson not found")
			}
			if lesson.CourseID != course.ID {
				return domainagg.CrossCourse(op, "lesson belongs to another course")
			}
		} else {
			existing, err := s.quizzes.GetFinalForCourse(dbc, course.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domainagg.NewError(domainagg.CodeConflict, op, "course already has a final quiz", nil)
			}
		}
		if _, err := s.quizzes.Create(dbc, []*types.Quiz{quiz}); err != nil {
			return err
		}
		for i, qin := range in.Questions {
			question := &types.Question{ID: uuid.New(), QuizID: quiz.ID, Prompt: strings.TrimSpace(qin.Prompt), Position: i + 1}
			if _, err := s.questions.Create(dbc, []*types.Question{question}); err != nil {
				return err
			}
			rows := make([]*types.Choice, 0, len(qin.Choices))
			for _, c := range qin.Choices {
				rows = append(rows, &types.Choice{ID: uuid.New(), QuestionID: question.ID, Text: strings.TrimSpace(c.Text), IsCorrect: c.IsCorrect})
			}
			if _, err := s.choices.Create(dbc, rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return quiz, nil
}

// StartAttempt resumes the caller's open attempt or opens a new one while
// the attempt budget allows.
func (s *quizService) StartAttempt(ctx context.Context, quizID uuid.UUID) (*AttemptView, error) {
	const op = "Quiz.StartAttempt"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizzes.GetByID(dbctx.New(ctx), quizID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if quiz == nil {
		return nil, domainagg.NotFound(op, "quiz not found")
	}
	if _, err := grantingEnrollment(ctx, s.enrollments, op, rd.UserID, quiz.CourseID); err != nil {
		return nil, err
	}

	var attempt *types.Attempt
	resumed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		open, err := s.attempts.GetOpen(dbc, quiz.ID, rd.UserID)
		if err != nil {
			return err
		}
		if open != nil {
			attempt, resumed = open, true
			return nil
		}
		used, err := s.attempts.CountSubmitted(dbc, quiz.ID, rd.UserID)
		if err != nil {
			return err
		}
		if used >= quiz.MaxAttempts {
			return domainagg.Forbidden(op, "attempt limit reached")
		}
		attempt = &types.Attempt{ID: uuid.New(), QuizID: quiz.ID, UserID: rd.UserID, StartedAt: s.now()}
		_, err = s.attempts.Create(dbc, []*types.Attempt{attempt})
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	questions, err := s.loadQuestions(dbctx.New(ctx), quiz.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return &AttemptView{Attempt: attempt, Quiz: quiz, Questions: questions.views(), Resumed: resumed}, nil
}

type questionSet struct {
	questions []*types.Question
	choices   map[uuid.UUID][]*types.Choice
}

func (qs questionSet) views() []QuestionView {
	out := make([]QuestionView, 0, len(qs.questions))
	for _, q := range qs.questions {
		v := QuestionView{ID: q.ID, Prompt: q.Prompt, Position: q.Position, Choices: []ChoiceView{}}
		for _, c := range qs.choices[q.ID] {
			v.Choices = append(v.Choices, ChoiceView{ID: c.ID, Text: c.Text})
		}
		out = append(out, v)
	}
	return out
}

func (s *quizService) loadQuestions(dbc dbctx.Context, quizID uuid.UUID) (questionSet, error) {
	questions, err := s.questions.ListByQuiz(dbc, quizID)
	if err != nil {
		return questionSet{}, err
	}
	ids := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	choices, err := s.choices.ListByQuestionIDs(dbc, ids)
	if err != nil {
		return questionSet{}, err
	}
	byQuestion := make(map[uuid.UUID][]*types.Choice, len(questions))
	for _, c := range choices {
		byQuestion[c.QuestionID] = append(byQuestion[c.QuestionID], c)
	}
	return questionSet{questions: questions, choices: byQuestion}, nil
}

// SubmitAttempt scores the answers once. Passing the course's final quiz
// triggers certificate issuance.
func (s *quizService) SubmitAttempt(ctx context.Context, attemptID uuid.UUID, answers map[uuid.UUID]uuid.UUID) (*SubmitResult, error) {
	const op = "Quiz.SubmitAttempt"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out  = &SubmitResult{}
		quiz *types.Quiz
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		attempt, err := s.attempts.LockByID(dbc, attemptID)
		if err != nil {
			return err
		}
		if attempt == nil || attempt.UserID != rd.UserID {
			return domainagg.NotFound(op, "attempt not found")
		}
		if attempt.Submitted() {
			return domainagg.NewError(domainagg.CodeConflict, op, "attempt already submitted", nil)
		}
		quiz, err = s.quizzes.GetByID(dbc, attempt.QuizID)
		if err != nil {
			return err
		}
		if quiz == nil {
			return domainagg.NotFound(op, "quiz not found")
		}
		qs, err := s.loadQuestions(dbc, quiz.ID)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(qs.questions))
		for _, q := range qs.questions {
			known[q.ID] = true
		}
		for qid := range answers {
			if !known[qid] {
				return domainagg.Invalid(op, fmt.Sprintf("question %s is not part of this quiz", qid))
			}
		}

		correct := 0
		rows := make([]*types.AttemptAnswer, 0, len(qs.questions))
		for _, q := range qs.questions {
			row := &types.AttemptAnswer{ID: uuid.New(), AttemptID: attempt.ID, QuestionID: q.ID}
			if selected, ok := answers[q.ID]; ok {
				var picked *types.Choice
				for _, c := range qs.choices[q.ID] {
					if c.ID == selected {
						picked = c
						break
					}
				}
				if picked == nil {
					return domainagg.Invalid(op, fmt.Sprintf("choice %s does not belong to question %s", selected, q.ID))
				}
				id := picked.ID
				row.SelectedChoiceID = &id
				if picked.IsCorrect {
					correct++
				}
			}
			rows = append(rows, row)
		}
		if _, err := s.answers.Create(dbc, rows); err != nil {
			return err
		}

		now := s.now()
		attempt.SubmittedAt = &now
		attempt.ScorePercent = assessment.Score(correct, len(qs.questions))
		attempt.Passed = attempt.ScorePercent >= quiz.PassingScore
		if err := s.attempts.UpdateFields(dbc, attempt.ID, map[string]interface{}{
			"submitted_at":  now,
			"score_percent": attempt.ScorePercent,
			"passed":        attempt.Passed,
		}); err != nil {
			return err
		}
		out.Attempt = attempt
		out.Correct = correct
		out.Total = len(qs.questions)
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("Attempt submitted", "attempt_id", attemptID, "score", out.Attempt.ScorePercent, "passed", out.Attempt.Passed)

	if quiz.IsFinal() && out.Attempt.Passed && s.certifier != nil {
		cert, err := s.certifier.IssueIfQualified(ctx, rd.UserID, quiz.CourseID)
		if err != nil {
			return nil, fmt.Errorf("issue certificate: %w", err)
		}
		out.Certificate = cert
	}
	return out, nil
}
