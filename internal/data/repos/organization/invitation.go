package organization

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/domain/organization"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type CompanyInvitationRepo interface {
	Create(dbc dbctx.Context, rows []*types.CompanyInvitation) ([]*types.CompanyInvitation, error)
	LockByCompanyAndEmail(dbc dbctx.Context, companyID uuid.UUID, email string) (*types.CompanyInvitation, error)
	LockByToken(dbc dbctx.Context, token uuid.UUID) (*types.CompanyInvitation, error)
	ListPendingByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyInvitation, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type companyInvitationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyInvitationRepo(db *gorm.DB, baseLog *logger.Logger) CompanyInvitationRepo {
	return &companyInvitationRepo{db: db, log: baseLog.With("repo", "CompanyInvitationRepo")}
}

func (r *companyInvitationRepo) Create(dbc dbctx.Context, rows []*types.CompanyInvitation) ([]*types.CompanyInvitation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CompanyInvitation{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *companyInvitationRepo) LockByCompanyAndEmail(dbc dbctx.Context, companyID uuid.UUID, email string) (*types.CompanyInvitation, error) {
	email = organization.NormalizeEmail(email)
	if companyID == uuid.Nil || email == "" {
		return nil, nil
	}
	return r.findLocked(dbc, "company_id = ? AND email = ?", companyID, email)
}

func (r *companyInvitationRepo) LockByToken(dbc dbctx.Context, token uuid.UUID) (*types.CompanyInvitation, error) {
	if token == uuid.Nil {
		return nil, nil
	}
	return r.findLocked(dbc, "token = ?", token)
}

func (r *companyInvitationRepo) findLocked(dbc dbctx.Context, query string, args ...interface{}) (*types.CompanyInvitation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.CompanyInvitation
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(query, args...).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *companyInvitationRepo) ListPendingByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyInvitation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.CompanyInvitation{}
	if companyID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("company_id = ? AND accepted_at IS NULL", companyID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyInvitationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CompanyInvitation{}).
		Where("id = ?", id).
		Updates(updates).Error
}
