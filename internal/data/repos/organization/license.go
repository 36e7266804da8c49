package organization

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type CompanyLicenseRepo interface {
	Create(dbc dbctx.Context, rows []*types.CompanyLicense) ([]*types.CompanyLicense, error)
	// CreateIgnoreConflict skips rows whose order_item_id already has a license.
	CreateIgnoreConflict(dbc dbctx.Context, rows []*types.CompanyLicense) (int64, error)
	ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyLicense, error)
	// LockByCompany row-locks every license of the company, oldest first.
	LockByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyLicense, error)
	// ConsumeSeats adds n to seats_used if capacity allows and reports
	// whether the row changed.
	ConsumeSeats(dbc dbctx.Context, id uuid.UUID, n int) (bool, error)
}

type companyLicenseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyLicenseRepo(db *gorm.DB, baseLog *logger.Logger) CompanyLicenseRepo {
	return &companyLicenseRepo{db: db, log: baseLog.With("repo", "CompanyLicenseRepo")}
}

func (r *companyLicenseRepo) Create(dbc dbctx.Context, rows []*types.CompanyLicense) ([]*types.CompanyLicense, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CompanyLicense{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *companyLicenseRepo) CreateIgnoreConflict(dbc dbctx.Context, rows []*types.CompanyLicense) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_item_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *companyLicenseRepo) ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyLicense, error) {
	return r.byCompany(dbc, companyID, false)
}

func (r *companyLicenseRepo) LockByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyLicense, error) {
	return r.byCompany(dbc, companyID, true)
}

func (r *companyLicenseRepo) byCompany(dbc dbctx.Context, companyID uuid.UUID, lock bool) ([]*types.CompanyLicense, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.CompanyLicense{}
	if companyID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyLicenseRepo) ConsumeSeats(dbc dbctx.Context, id uuid.UUID, n int) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || n <= 0 {
		return false, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.CompanyLicense{}).
		Where("id = ? AND seats_used + ? <= seats_total", id, n).
		UpdateColumn("seats_used", gorm.Expr("seats_used + ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
