package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

// CourseFilter narrows the public catalog listing.
type CourseFilter struct {
	CategoryID  *uuid.UUID
	CourseType  types.CourseType
	PricingType types.PricingType
	Query       string
	Limit       int
	Offset      int
}

type CourseRepo interface {
	Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Course, error)
	SlugExists(dbc dbctx.Context, slug string) (bool, error)
	ListPublished(dbc dbctx.Context, f CourseFilter) ([]*types.Course, error)
	ListByInstructor(dbc dbctx.Context, instructorID uuid.UUID) ([]*types.Course, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Course
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
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

func (r *courseRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Course, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Course
	if err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *courseRepo) SlugExists(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Course{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPublished returns public, published courses newest first. Company-only
// courses never appear here.
func (r *courseRepo) ListPublished(dbc dbctx.Context, f CourseFilter) ([]*types.Course, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := paginate(t.WithContext(dbc.Ctx), f.Limit, f.Offset).
		Where("status = ?", types.CourseStatusPublished).
		Where("company_only = ?", false)
	if f.CategoryID != nil && *f.CategoryID != uuid.Nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.CourseType != "" {
		q = q.Where("course_type = ?", f.CourseType)
	}
	if f.PricingType != "" {
		q = q.Where("pricing_type = ?", f.PricingType)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" {
		like := "%" + s + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(subtitle) LIKE ?)", like, like)
	}
	out := []*types.Course{}
	if err := q.Order("published_at DESC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) ListByInstructor(dbc dbctx.Context, instructorID uuid.UUID) ([]*types.Course, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Course{}
	if instructorID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Course
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

func (r *courseRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Course{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// paginate applies a page window: limit defaults to 20 and is capped at 50.
func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return q.Limit(limit).Offset(offset)
}
