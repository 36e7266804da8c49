package organization

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type CompanyAssignmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.CompanyAssignment) ([]*types.CompanyAssignment, error)
	AddTargets(dbc dbctx.Context, assignmentID uuid.UUID, userIDs []uuid.UUID) error
	ListTargets(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.CompanyAssignmentTarget, error)
	ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyAssignment, error)
}

type companyAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) CompanyAssignmentRepo {
	return &companyAssignmentRepo{db: db, log: baseLog.With("repo", "CompanyAssignmentRepo")}
}

func (r *companyAssignmentRepo) Create(dbc dbctx.Context, rows []*types.CompanyAssignment) ([]*types.CompanyAssignment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CompanyAssignment{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *companyAssignmentRepo) AddTargets(dbc dbctx.Context, assignmentID uuid.UUID, userIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if assignmentID == uuid.Nil || len(userIDs) == 0 {
		return nil
	}
	rows := make([]*types.CompanyAssignmentTarget, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, &types.CompanyAssignmentTarget{AssignmentID: assignmentID, UserID: id})
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *companyAssignmentRepo) ListTargets(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.CompanyAssignmentTarget, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.CompanyAssignmentTarget{}
	if assignmentID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("assignment_id = ?", assignmentID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyAssignmentRepo) ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.CompanyAssignment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.CompanyAssignment{}
	if companyID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
