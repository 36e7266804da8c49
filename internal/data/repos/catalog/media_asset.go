package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type MediaAssetRepo interface {
	Create(dbc dbctx.Context, rows []*types.MediaAsset) ([]*types.MediaAsset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaAsset, error)
	GetByObjectKey(dbc dbctx.Context, key string) (*types.MediaAsset, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, limit int) ([]*types.MediaAsset, error)
}

type mediaAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaAssetRepo(db *gorm.DB, baseLog *logger.Logger) MediaAssetRepo {
	return &mediaAssetRepo{db: db, log: baseLog.With("repo", "MediaAssetRepo")}
}

func (r *mediaAssetRepo) Create(dbc dbctx.Context, rows []*types.MediaAsset) ([]*types.MediaAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.MediaAsset{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *mediaAssetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaAsset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.MediaAsset
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *mediaAssetRepo) GetByObjectKey(dbc dbctx.Context, key string) (*types.MediaAsset, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.MediaAsset
	if err := t.WithContext(dbc.Ctx).Where("object_key = ?", key).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *mediaAssetRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, limit int) ([]*types.MediaAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.MediaAsset{}
	if ownerID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
