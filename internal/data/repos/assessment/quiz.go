package assessment

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type QuizRepo interface {
	Create(dbc dbctx.Context, rows []*types.Quiz) ([]*types.Quiz, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error)
	// GetFinalForCourse returns the course quiz with no lesson attached.
	GetFinalForCourse(dbc dbctx.Context, courseID uuid.UUID) (*types.Quiz, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Quiz, error)
	CountByLessons(dbc dbctx.Context, lessonIDs []uuid.UUID) (int, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(dbc dbctx.Context, rows []*types.Quiz) ([]*types.Quiz, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Quiz{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *quizRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Quiz
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *quizRepo) GetFinalForCourse(dbc dbctx.Context, courseID uuid.UUID) (*types.Quiz, error) {
	if courseID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Quiz
	if err := t.WithContext(dbc.Ctx).
		Where("course_id = ? AND lesson_id IS NULL", courseID).
		Order("id ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *quizRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Quiz, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Quiz{}
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("course_id = ?", courseID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizRepo) CountByLessons(dbc dbctx.Context, lessonIDs []uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Quiz{}).
		Where("lesson_id IN ?", lessonIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
