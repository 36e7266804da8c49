package certification

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type CertificateTemplateRepo interface {
	Create(dbc dbctx.Context, rows []*types.CertificateTemplate) ([]*types.CertificateTemplate, error)
	// GetDefault returns the oldest template, or nil when none exist.
	GetDefault(dbc dbctx.Context) (*types.CertificateTemplate, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CertificateTemplate, error)
}

type certificateTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateTemplateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateTemplateRepo {
	return &certificateTemplateRepo{db: db, log: baseLog.With("repo", "CertificateTemplateRepo")}
}

func (r *certificateTemplateRepo) Create(dbc dbctx.Context, rows []*types.CertificateTemplate) ([]*types.CertificateTemplate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CertificateTemplate{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *certificateTemplateRepo) GetDefault(dbc dbctx.Context) (*types.CertificateTemplate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.CertificateTemplate
	if err := t.WithContext(dbc.Ctx).Order("created_at ASC").Order("name ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *certificateTemplateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CertificateTemplate, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.CertificateTemplate
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

type IssuedCertificateRepo interface {
	Create(dbc dbctx.Context, rows []*types.IssuedCertificate) ([]*types.IssuedCertificate, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IssuedCertificate, error)
	GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.IssuedCertificate, error)
	GetBySerial(dbc dbctx.Context, serial string) (*types.IssuedCertificate, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.IssuedCertificate, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SetDocumentKeyIfEmpty(dbc dbctx.Context, id uuid.UUID, key string) (bool, error)
}

type issuedCertificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIssuedCertificateRepo(db *gorm.DB, baseLog *logger.Logger) IssuedCertificateRepo {
	return &issuedCertificateRepo{db: db, log: baseLog.With("repo", "IssuedCertificateRepo")}
}

func (r *issuedCertificateRepo) Create(dbc dbctx.Context, rows []*types.IssuedCertificate) ([]*types.IssuedCertificate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.IssuedCertificate{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *issuedCertificateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IssuedCertificate, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.IssuedCertificate
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *issuedCertificateRepo) GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.IssuedCertificate, error) {
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.IssuedCertificate
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

func (r *issuedCertificateRepo) GetBySerial(dbc dbctx.Context, serial string) (*types.IssuedCertificate, error) {
	serial = strings.ToUpper(strings.TrimSpace(serial))
	if serial == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.IssuedCertificate
	if err := t.WithContext(dbc.Ctx).Where("serial = ?", serial).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *issuedCertificateRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.IssuedCertificate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.IssuedCertificate{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *issuedCertificateRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.IssuedCertificate{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetDocumentKeyIfEmpty stores key only while the row has no document yet.
func (r *issuedCertificateRepo) SetDocumentKeyIfEmpty(dbc dbctx.Context, id uuid.UUID, key string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || key == "" {
		return false, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.IssuedCertificate{}).
		Where("id = ? AND (document_key = '' OR document_key IS NULL)", id).
		Update("document_key", key)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
