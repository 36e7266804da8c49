package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type ReviewRepo interface {
	// Upsert writes the (course, user) review, replacing rating and comment
	// when one exists, and returns the stored row.
	Upsert(dbc dbctx.Context, row *types.Review) (*types.Review, error)
	GetByCourseAndUser(dbc dbctx.Context, courseID, userID uuid.UUID) (*types.Review, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID, limit, offset int) ([]*types.Review, error)
	ListByInstructor(dbc dbctx.Context, instructorID uuid.UUID, limit, offset int) ([]*types.Review, error)
	SummaryByCourse(dbc dbctx.Context, courseID uuid.UUID) (types.RatingSummary, error)
	SummaryByInstructor(dbc dbctx.Context, instructorID uuid.UUID) (types.RatingSummary, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) Upsert(dbc dbctx.Context, row *types.Review) (*types.Review, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.CourseID == uuid.Nil || row.UserID == uuid.Nil {
		return nil, nil
	}
	row.UpdatedAt = time.Now().UTC()
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByCourseAndUser(dbc, row.CourseID, row.UserID)
}

func (r *reviewRepo) GetByCourseAndUser(dbc dbctx.Context, courseID, userID uuid.UUID) (*types.Review, error) {
	if courseID == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Review
	if err := t.WithContext(dbc.Ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *reviewRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID, limit, offset int) ([]*types.Review, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Review{}
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := paginate(t.WithContext(dbc.Ctx), limit, offset).
		Where("course_id = ?", courseID).
		Order("created_at DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) ListByInstructor(dbc dbctx.Context, instructorID uuid.UUID, limit, offset int) ([]*types.Review, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Review{}
	if instructorID == uuid.Nil {
		return out, nil
	}
	if err := paginate(t.WithContext(dbc.Ctx), limit, offset).
		Select("review.*").
		Joins("JOIN course ON course.id = review.course_id").
		Where("course.instructor_id = ?", instructorID).
		Order("review.created_at DESC, review.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type ratingRow struct {
	Count   int64
	Average float64
}

func (r *reviewRepo) SummaryByCourse(dbc dbctx.Context, courseID uuid.UUID) (types.RatingSummary, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row ratingRow
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("course_id = ?", courseID).
		Scan(&row).Error; err != nil {
		return types.RatingSummary{}, err
	}
	return types.RatingSummary{Count: int(row.Count), Average: row.Average}, nil
}

func (r *reviewRepo) SummaryByInstructor(dbc dbctx.Context, instructorID uuid.UUID) (types.RatingSummary, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row ratingRow
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(review.rating), 0) AS average").
		Joins("JOIN course ON course.id = review.course_id").
		Where("course.instructor_id = ?", instructorID).
		Scan(&row).Error; err != nil {
		return types.RatingSummary{}, err
	}
	return types.RatingSummary{Count: int(row.Count), Average: row.Average}, nil
}
