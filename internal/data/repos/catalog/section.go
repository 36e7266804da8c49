package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type CourseSectionRepo interface {
	Create(dbc dbctx.Context, rows []*types.CourseSection) ([]*types.CourseSection, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseSection, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseSection, error)
	NextPosition(dbc dbctx.Context, courseID uuid.UUID) (int, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type courseSectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseSectionRepo(db *gorm.DB, baseLog *logger.Logger) CourseSectionRepo {
	return &courseSectionRepo{db: db, log: baseLog.With("repo", "CourseSectionRepo")}
}

func (r *courseSectionRepo) Create(dbc dbctx.Context, rows []*types.CourseSection) ([]*types.CourseSection, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CourseSection{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseSectionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseSection, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.CourseSection
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *courseSectionRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseSection, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.CourseSection{}
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NextPosition returns max(position)+1 for the course, starting at 1.
func (r *courseSectionRepo) NextPosition(dbc dbctx.Context, courseID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var max int64
	row := t.WithContext(dbc.Ctx).
		Model(&types.CourseSection{}).
		Select("COALESCE(MAX(position), 0)").
		Where("course_id = ?", courseID).
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return int(max) + 1, nil
}

func (r *courseSectionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CourseSection{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *courseSectionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.CourseSection{}).Error
}
