package commerce

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/domain/commerce"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type CouponRepo interface {
	Create(dbc dbctx.Context, rows []*types.Coupon) ([]*types.Coupon, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Coupon, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Coupon, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Coupon, error)
	IncrementUsed(dbc dbctx.Context, id uuid.UUID) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type couponRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCouponRepo(db *gorm.DB, baseLog *logger.Logger) CouponRepo {
	return &couponRepo{db: db, log: baseLog.With("repo", "CouponRepo")}
}

func (r *couponRepo) Create(dbc dbctx.Context, rows []*types.Coupon) ([]*types.Coupon, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Coupon{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *couponRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Coupon, error) {
	return r.first(dbc, false, "id = ?", id)
}

func (r *couponRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Coupon, error) {
	return r.first(dbc, true, "id = ?", id)
}

func (r *couponRepo) GetByCode(dbc dbctx.Context, code string) (*types.Coupon, error) {
	code = commerce.NormalizeCouponCode(code)
	if code == "" {
		return nil, nil
	}
	return r.first(dbc, false, "code = ?", code)
}

func (r *couponRepo) first(dbc dbctx.Context, lock bool, query string, arg interface{}) (*types.Coupon, error) {
	if id, ok := arg.(uuid.UUID); ok && id == uuid.Nil {
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
	var rows []*types.Coupon
	if err := q.Where(query, arg).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *couponRepo) IncrementUsed(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Coupon{}).
		Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1)).Error
}

func (r *couponRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Coupon{}).
		Where("id = ?", id).
		Updates(updates).Error
}
