package organization

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type CompanyRepo interface {
	Create(dbc dbctx.Context, rows []*types.Company) ([]*types.Company, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Company, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Company, error)
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	return &companyRepo{db: db, log: baseLog.With("repo", "CompanyRepo")}
}

func (r *companyRepo) Create(dbc dbctx.Context, rows []*types.Company) ([]*types.Company, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Company{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *companyRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Company, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Company
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *companyRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Company, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Company
	if err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

type CompanyMemberRepo interface {
	Create(dbc dbctx.Context, rows []*types.CompanyMember) ([]*types.CompanyMember, error)
	GetByCompanyAndUser(dbc dbctx.Context, companyID, userID uuid.UUID) (*types.CompanyMember, error)
	ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyMember, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.CompanyMember, error)
	// MemberUserIDs returns the subset of userIDs that belong to the company.
	MemberUserIDs(dbc dbctx.Context, companyID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error)
}

type companyMemberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyMemberRepo(db *gorm.DB, baseLog *logger.Logger) CompanyMemberRepo {
	return &companyMemberRepo{db: db, log: baseLog.With("repo", "CompanyMemberRepo")}
}

func (r *companyMemberRepo) Create(dbc dbctx.Context, rows []*types.CompanyMember) ([]*types.CompanyMember, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CompanyMember{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *companyMemberRepo) GetByCompanyAndUser(dbc dbctx.Context, companyID, userID uuid.UUID) (*types.CompanyMember, error) {
	if companyID == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.CompanyMember
	if err := t.WithContext(dbc.Ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *companyMemberRepo) ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyMember, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.CompanyMember{}
	if companyID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("company_id = ?", companyID).
		Order("joined_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyMemberRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.CompanyMember, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.CompanyMember{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyMemberRepo) MemberUserIDs(dbc dbctx.Context, companyID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []uuid.UUID{}
	if companyID == uuid.Nil || len(userIDs) == 0 {
		return out, nil
	}
	var rows []*types.CompanyMember
	if err := t.WithContext(dbc.Ctx).
		Where("company_id = ? AND user_id IN ?", companyID, userIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out = append(out, m.UserID)
	}
	return out, nil
}
