package assessment

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type QuestionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Question) ([]*types.Question, error)
	ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*types.Question, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Create(dbc dbctx.Context, rows []*types.Question) ([]*types.Question, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Question{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *questionRepo) ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*types.Question, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Question{}
	if quizID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type ChoiceRepo interface {
	Create(dbc dbctx.Context, rows []*types.Choice) ([]*types.Choice, error)
	ListByQuestionIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*types.Choice, error)
}

type choiceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChoiceRepo(db *gorm.DB, baseLog *logger.Logger) ChoiceRepo {
	return &choiceRepo{db: db, log: baseLog.With("repo", "ChoiceRepo")}
}

func (r *choiceRepo) Create(dbc dbctx.Context, rows []*types.Choice) ([]*types.Choice, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Choice{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *choiceRepo) ListByQuestionIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*types.Choice, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Choice{}
	if len(questionIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("question_id IN ?", questionIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
