package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/ids"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

const (
	UploadURLTTL   = 15 * time.Minute
	DownloadURLTTL = 10 * time.Minute

	// SizeTolerance is how far the stored object may drift from the size the
	// uploader declared.
	SizeTolerance int64 = 5 * 1024 * 1024

	DefaultMediaKeyPrefix = "media"
	maxOwnerAssets        = 200
)

type InitUploadInput struct {
	Kind                string `validate:"required,oneof=video audio doc"`
	DeclaredContentType string `validate:"required,max=200"`
	DeclaredSize        int64  `validate:"gte=1"`
	Filename            string `validate:"required,max=255"`
	Title               string `validate:"max=200"`
}

type InitUploadResult struct {
	ObjectKey       string            `json:"object_key"`
	SignedPutURL    string            `json:"signed_put_url"`
	RequiredHeaders map[string]string `json:"required_headers"`
	ExpiresAt       time.Time         `json:"expires_at"`
}

type FinalizeUploadInput struct {
	ObjectKey           string `validate:"required,max=1024"`
	DeclaredSize        int64  `validate:"gte=1"`
	DeclaredContentType string `validate:"required,max=200"`
	Kind                string `validate:"required,oneof=video audio doc"`
	Title               string `validate:"max=200"`
	DurationSeconds     *int   `validate:"omitempty,gte=0"`
	Binding             *domainagg.LessonBinding
}

type FinalizeUploadResult struct {
	Asset   *types.MediaAsset    `json:"asset"`
	Lesson  *types.Lesson        `json:"lesson,omitempty"`
	Created bool                 `json:"created"`
	State   domainagg.MediaState `json:"state"`
}

type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MediaService interface {
	InitUpload(ctx context.Context, in InitUploadInput) (*InitUploadResult, error)
	FinalizeUpload(ctx context.Context, in FinalizeUploadInput) (*FinalizeUploadResult, error)
	SignedDownload(ctx context.Context, assetID uuid.UUID) (*SignedURL, error)
	ListOwnerAssets(ctx context.Context) ([]*types.MediaAsset, error)
}

type mediaService struct {
	log         *logger.Logger
	assets      repos.MediaAssetRepo
	lessons     repos.LessonRepo
	enrollments repos.EnrollmentRepo
	agg         domainagg.MediaAggregate
	storage     objectstore.Gateway
	catalog     CatalogService
	keyPrefix   string
	now         func() time.Time
}

func NewMediaService(
	log *logger.Logger,
	assets repos.MediaAssetRepo,
	lessons repos.LessonRepo,
	enrollments repos.EnrollmentRepo,
	agg domainagg.MediaAggregate,
	storage objectstore.Gateway,
	catalog CatalogService,
	keyPrefix string,
) MediaService {
	keyPrefix = strings.Trim(strings.TrimSpace(keyPrefix), "/")
	if keyPrefix == "" {
		keyPrefix = DefaultMediaKeyPrefix
	}
	return &mediaService{
		log:         log.With("service", "MediaService"),
		assets:      assets,
		lessons:     lessons,
		enrollments: enrollments,
		agg:         agg,
		storage:     storage,
		catalog:     catalog,
		keyPrefix:   keyPrefix,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *mediaService) ownerPrefix(ownerID uuid.UUID) string {
	return s.keyPrefix + "/" + ownerID.String() + "/"
}

func (s *mediaService) InitUpload(ctx context.Context, in InitUploadInput) (*InitUploadResult, error) {
	const op = "Media.InitUpload"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	in.DeclaredContentType = strings.TrimSpace(in.DeclaredContentType)
	in.Filename = strings.TrimSpace(in.Filename)
	if err := validateInput(op, in); err != nil {
		observability.Current().IncUpload("init", "invalid")
		return nil, err
	}

	ext := fileExt(in.Filename)
	var key string
	for attempt := 0; attempt < 5 && key == ""; attempt++ {
		candidate := s.ownerPrefix(rd.UserID) + in.Kind + "/" + ids.New() + ext
		existing, err := s.assets.GetByObjectKey(dbctx.New(ctx), candidate)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if existing == nil {
			key = candidate
		}
	}
	if key == "" {
		return nil, domainagg.NewError(domainagg.CodeRetryable, op, "could not allocate an object key", nil)
	}

	url, err := s.storage.PresignPut(ctx, objectstore.CategoryMedia, key, in.DeclaredContentType, UploadURLTTL)
	if err != nil {
		observability.Current().IncUpload("init", "error")
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	observability.Current().IncUpload("init", "ok")
	return &InitUploadResult{
		ObjectKey:       key,
		SignedPutURL:    url,
		RequiredHeaders: map[string]string{"Content-Type": in.DeclaredContentType},
		ExpiresAt:       s.now().Add(UploadURLTTL),
	}, nil
}

// fileExt returns the lower-cased extension of name when it is short and
// alphanumeric; anything else yields no extension.
func fileExt(name string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(name, "\\", "/"))))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}

// FinalizeUpload verifies the uploaded object and only then records the
// asset. Repeating the call with the same key returns the same asset.
func (s *mediaService) FinalizeUpload(ctx context.Context, in FinalizeUploadInput) (*FinalizeUploadResult, error) {
	const op = "Media.FinalizeUpload"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	in.ObjectKey = strings.TrimSpace(in.ObjectKey)
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	in.DeclaredContentType = strings.TrimSpace(in.DeclaredContentType)
	if err := validateInput(op, in); err != nil {
		observability.Current().IncUpload("finalize", "invalid")
		return nil, err
	}
	if !strings.HasPrefix(in.ObjectKey, s.ownerPrefix(rd.UserID)) || strings.Contains(in.ObjectKey, "..") {
		observability.Current().IncUpload("finalize", "forbidden")
		return nil, domainagg.Forbidden(op, "object key is outside the caller's upload prefix")
	}
	// Keys look like {prefix}/{owner}/{kind}/{id}{ext}.
	keyKind, name, ok := strings.Cut(strings.TrimPrefix(in.ObjectKey, s.ownerPrefix(rd.UserID)), "/")
	if !ok || keyKind != in.Kind || name == "" || strings.Contains(name, "/") {
		observability.Current().IncUpload("finalize", "invalid")
		return nil, domainagg.Invalid(op, fmt.Sprintf("object key does not belong to a %s upload", in.Kind))
	}

	info, err := s.storage.Head(ctx, objectstore.CategoryMedia, in.ObjectKey)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			observability.Current().IncUpload("finalize", "object_not_found")
			return nil, domainagg.NewError(domainagg.CodeObjectNotFound, op, "uploaded object not found", err)
		}
		return nil, fmt.Errorf("head uploaded object: %w", err)
	}
	if info.Size <= 0 || absInt64(info.Size-in.DeclaredSize) > SizeTolerance {
		observability.Current().IncUpload("finalize", "size_mismatch")
		s.log.Warn("Upload size mismatch", "object_key", in.ObjectKey, "declared", in.DeclaredSize, "verified", info.Size)
		return nil, domainagg.SizeMismatch(op, in.DeclaredSize, info.Size)
	}
	contentType := strings.TrimSpace(info.ContentType)
	if contentType == "" {
		contentType = in.DeclaredContentType
	}

	res, err := s.agg.RegisterVerifiedAsset(ctx, domainagg.RegisterAssetInput{
		OwnerID:             rd.UserID,
		ObjectKey:           in.ObjectKey,
		Kind:                types.MediaKind(in.Kind),
		Title:               strings.TrimSpace(in.Title),
		ContentType:         contentType,
		SizeBytes:           info.Size,
		DeclaredContentType: in.DeclaredContentType,
		DeclaredSizeBytes:   in.DeclaredSize,
		DurationSeconds:     in.DurationSeconds,
		Binding:             in.Binding,
	})
	if err != nil {
		observability.Current().IncUpload("finalize", string(domainagg.CodeOf(err)))
		return nil, err
	}
	if res.Lesson != nil && s.catalog != nil {
		s.catalog.InvalidateOutline(ctx, res.Lesson.CourseID)
	}
	observability.Current().IncUpload("finalize", "ok")
	if res.Created {
		s.log.Info("Media asset registered", "asset_id", res.Asset.ID, "object_key", res.Asset.ObjectKey, "state", res.State)
	}
	return &FinalizeUploadResult{Asset: res.Asset, Lesson: res.Lesson, Created: res.Created, State: res.State}, nil
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// SignedDownload issues a short-lived URL when the caller owns the asset,
// when a referencing lesson is a preview, or when the caller is enrolled in
// a course that references it.
func (s *mediaService) SignedDownload(ctx context.Context, assetID uuid.UUID) (*SignedURL, error) {
	const op = "Media.SignedDownload"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	asset, err := s.assets.GetByID(dbc, assetID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if asset == nil {
		return nil, domainagg.NotFound(op, "media asset not found")
	}
	allowed, err := s.canDownload(dbc, rd.UserID, isSuperAdmin(rd), asset)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if !allowed {
		return nil, domainagg.Forbidden(op, "no access to this media asset")
	}
	url, err := s.storage.PresignGet(ctx, objectstore.CategoryMedia, asset.ObjectKey, DownloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	return &SignedURL{URL: url, ExpiresAt: s.now().Add(DownloadURLTTL)}, nil
}

func (s *mediaService) canDownload(dbc dbctx.Context, userID uuid.UUID, superAdmin bool, asset *types.MediaAsset) (bool, error) {
	if asset.OwnerID == userID || superAdmin {
		return true, nil
	}
	lessons, err := s.lessons.ListByMediaAsset(dbc, asset.ID)
	if err != nil {
		return false, err
	}
	courseIDs := make([]uuid.UUID, 0, len(lessons))
	seen := map[uuid.UUID]bool{}
	for _, l := range lessons {
		if l.IsPreview {
			return true, nil
		}
		if !seen[l.CourseID] {
			seen[l.CourseID] = true
			courseIDs = append(courseIDs, l.CourseID)
		}
	}
	if len(courseIDs) == 0 {
		return false, nil
	}
	enrolled, err := s.enrollments.GetByUserAndCourses(dbc, userID, courseIDs)
	if err != nil {
		return false, err
	}
	for _, e := range enrolled {
		if e.Grants() {
			return true, nil
		}
	}
	return false, nil
}

func (s *mediaService) ListOwnerAssets(ctx context.Context) ([]*types.MediaAsset, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.assets.ListByOwner(dbctx.New(ctx), rd.UserID, maxOwnerAssets)
	if err != nil {
		return nil, fmt.Errorf("list owner assets: %w", err)
	}
	return out, nil
}
