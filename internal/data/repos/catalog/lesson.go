package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type LessonRepo interface {
	Create(dbc dbctx.Context, rows []*types.Lesson) ([]*types.Lesson, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	// ListByCourseOrdered returns the course's lessons by (section position, lesson position).
	ListByCourseOrdered(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Lesson, error)
	ListIDsByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int, error)
	ListByMediaAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.Lesson, error)
	NextPosition(dbc dbctx.Context, sectionID uuid.UUID) (int, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListIDsBySection(dbc dbctx.Context, sectionID uuid.UUID) ([]uuid.UUID, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(dbc dbctx.Context, rows []*types.Lesson) ([]*types.Lesson, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Lesson{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *lessonRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Lesson
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *lessonRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Lesson
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

func (r *lessonRepo) ListByCourseOrdered(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Lesson{}
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Select("lesson.*").
		Joins("JOIN course_section ON course_section.id = lesson.section_id").
		Where("lesson.course_id = ?", courseID).
		Order("course_section.position ASC, lesson.position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) ListIDsByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.ListByCourseOrdered(dbc, courseID)
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, l := range rows {
		out = append(out, l.ID)
	}
	return out, nil
}

func (r *lessonRepo) CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *lessonRepo) ListByMediaAsset(dbc dbctx.Context, assetID uuid.UUID) ([]*types.Lesson, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Lesson{}
	if assetID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("media_asset_id = ?", assetID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) NextPosition(dbc dbctx.Context, sectionID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var max int64
	row := t.WithContext(dbc.Ctx).
		Model(&types.Lesson{}).
		Select("COALESCE(MAX(position), 0)").
		Where("section_id = ?", sectionID).
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return int(max) + 1, nil
}

func (r *lessonRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Lesson{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *lessonRepo) ListIDsBySection(dbc dbctx.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []uuid.UUID{}
	if sectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Lesson{}).
		Where("section_id = ?", sectionID).
		Order("position ASC").
		Pluck("id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Lesson{}).Error
}
