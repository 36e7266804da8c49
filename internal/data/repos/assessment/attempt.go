package assessment

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type AttemptRepo interface {
	Create(dbc dbctx.Context, rows []*types.Attempt) ([]*types.Attempt, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Attempt, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Attempt, error)
	CountSubmitted(dbc dbctx.Context, quizID, userID uuid.UUID) (int, error)
	// GetOpen returns the newest unsubmitted attempt, if any.
	GetOpen(dbc dbctx.Context, quizID, userID uuid.UUID) (*types.Attempt, error)
	// BestPassing returns the highest-scoring passed attempt, if any.
	BestPassing(dbc dbctx.Context, quizID, userID uuid.UUID) (*types.Attempt, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return &attemptRepo{db: db, log: baseLog.With("repo", "AttemptRepo")}
}

func (r *attemptRepo) Create(dbc dbctx.Context, rows []*types.Attempt) ([]*types.Attempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Attempt{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attemptRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Attempt, error) {
	return r.first(dbc, false, "id = ?", id)
}

func (r *attemptRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Attempt, error) {
	return r.first(dbc, true, "id = ?", id)
}

func (r *attemptRepo) first(dbc dbctx.Context, lock bool, query string, id uuid.UUID) (*types.Attempt, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rows []*types.Attempt
	if err := q.Where(query, id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *attemptRepo) CountSubmitted(dbc dbctx.Context, quizID, userID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Attempt{}).
		Where("quiz_id = ? AND user_id = ? AND submitted_at IS NOT NULL", quizID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *attemptRepo) GetOpen(dbc dbctx.Context, quizID, userID uuid.UUID) (*types.Attempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Attempt
	if err := t.WithContext(dbc.Ctx).
		Where("quiz_id = ? AND user_id = ? AND submitted_at IS NULL", quizID, userID).
		Order("started_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *attemptRepo) BestPassing(dbc dbctx.Context, quizID, userID uuid.UUID) (*types.Attempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Attempt
	if err := t.WithContext(dbc.Ctx).
		Where("quiz_id = ? AND user_id = ? AND passed = ? AND submitted_at IS NOT NULL", quizID, userID, true).
		Order("score_percent DESC").
		Order("submitted_at ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *attemptRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Attempt{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type AttemptAnswerRepo interface {
	Create(dbc dbctx.Context, rows []*types.AttemptAnswer) ([]*types.AttemptAnswer, error)
	ListByAttempt(dbc dbctx.Context, attemptID uuid.UUID) ([]*types.AttemptAnswer, error)
}

type attemptAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AttemptAnswerRepo {
	return &attemptAnswerRepo{db: db, log: baseLog.With("repo", "AttemptAnswerRepo")}
}

func (r *attemptAnswerRepo) Create(dbc dbctx.Context, rows []*types.AttemptAnswer) ([]*types.AttemptAnswer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.AttemptAnswer{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attemptAnswerRepo) ListByAttempt(dbc dbctx.Context, attemptID uuid.UUID) ([]*types.AttemptAnswer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.AttemptAnswer{}
	if attemptID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("attempt_id = ?", attemptID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
