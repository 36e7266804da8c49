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

type EnrollmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Enrollment) ([]*types.Enrollment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error)
	GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
	GetByUserAndCourses(dbc dbctx.Context, userID uuid.UUID, courseIDs []uuid.UUID) ([]*types.Enrollment, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Enrollment, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// ClearCurrentLesson unsets current_lesson_id wherever it points at one of lessonIDs.
	ClearCurrentLesson(dbc dbctx.Context, lessonIDs []uuid.UUID) (int64, error)
	CountByCourses(dbc dbctx.Context, courseIDs []uuid.UUID) (CourseCounts, error)
}

// CourseCounts counts non-canceled enrollments over a set of courses.
type CourseCounts struct {
	Enrollments int
	Completed   int
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) Create(dbc dbctx.Context, rows []*types.Enrollment) ([]*types.Enrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Enrollment{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *enrollmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Enrollment
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *enrollmentRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Enrollment
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *enrollmentRepo) GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Enrollment
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *enrollmentRepo) GetByUserAndCourses(dbc dbctx.Context, userID uuid.UUID, courseIDs []uuid.UUID) ([]*types.Enrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Enrollment{}
	if userID == uuid.Nil || len(courseIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Enrollment{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Enrollment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *enrollmentRepo) ClearCurrentLesson(dbc dbctx.Context, lessonIDs []uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Enrollment{}).
		Where("current_lesson_id IN ?", lessonIDs).
		Updates(map[string]interface{}{"current_lesson_id": nil, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *enrollmentRepo) CountByCourses(dbc dbctx.Context, courseIDs []uuid.UUID) (CourseCounts, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out CourseCounts
	if len(courseIDs) == 0 {
		return out, nil
	}
	var row struct {
		Total     int64
		Completed int64
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Enrollment{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed", types.EnrollmentCompleted).
		Where("course_id IN ? AND status <> ?", courseIDs, types.EnrollmentCanceled).
		Scan(&row).Error; err != nil {
		return out, err
	}
	out.Enrollments = int(row.Total)
	out.Completed = int(row.Completed)
	return out, nil
}
