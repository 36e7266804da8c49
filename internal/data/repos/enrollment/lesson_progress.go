package enrollment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type LessonProgressRepo interface {
	// CreateIgnoreConflict inserts rows, skipping any (enrollment_id, lesson_id)
	// pair that already exists, and returns how many rows were written.
	CreateIgnoreConflict(dbc dbctx.Context, rows []*types.LessonProgress) (int64, error)
	GetByEnrollmentAndLesson(dbc dbctx.Context, enrollmentID, lessonID uuid.UUID) (*types.LessonProgress, error)
	LockByEnrollmentAndLesson(dbc dbctx.Context, enrollmentID, lessonID uuid.UUID) (*types.LessonProgress, error)
	ListByEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) ([]*types.LessonProgress, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByLessons(dbc dbctx.Context, lessonIDs []uuid.UUID) (int64, error)
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	return &lessonProgressRepo{db: db, log: baseLog.With("repo", "LessonProgressRepo")}
}

func (r *lessonProgressRepo) CreateIgnoreConflict(dbc dbctx.Context, rows []*types.LessonProgress) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *lessonProgressRepo) GetByEnrollmentAndLesson(dbc dbctx.Context, enrollmentID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	return r.find(dbc, enrollmentID, lessonID, false)
}

func (r *lessonProgressRepo) LockByEnrollmentAndLesson(dbc dbctx.Context, enrollmentID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	return r.find(dbc, enrollmentID, lessonID, true)
}

func (r *lessonProgressRepo) find(dbc dbctx.Context, enrollmentID, lessonID uuid.UUID, lock bool) (*types.LessonProgress, error) {
	if enrollmentID == uuid.Nil || lessonID == uuid.Nil {
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
	var rows []*types.LessonProgress
	if err := q.
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *lessonProgressRepo) ListByEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) ([]*types.LessonProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.LessonProgress{}
	if enrollmentID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("enrollment_id = ?", enrollmentID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonProgressRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.LessonProgress{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *lessonProgressRepo) DeleteByLessons(dbc dbctx.Context, lessonIDs []uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).Where("lesson_id IN ?", lessonIDs).Delete(&types.LessonProgress{})
	return res.RowsAffected, res.Error
}
