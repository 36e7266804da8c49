package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain/catalog"
)

var MediaAggregateContract = Contract{
	Name:             "MediaAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Assets are created only after storage verification, keyed by object_key; lesson binding requires course ownership.",
}

type MediaState string

const (
	MediaStateVerified MediaState = "VERIFIED"
	MediaStateBound    MediaState = "BOUND"
)

type LessonBinding struct {
	CourseID  uuid.UUID
	SectionID *uuid.UUID
	LessonID  uuid.UUID
}

// RegisterAssetInput carries values already verified against storage.
type RegisterAssetInput struct {
	OwnerID             uuid.UUID
	ObjectKey           string
	Kind                catalog.MediaKind
	Title               string
	ContentType         string
	SizeBytes           int64
	DeclaredContentType string
	DeclaredSizeBytes   int64
	DurationSeconds     *int
	Binding             *LessonBinding
}

type RegisterAssetResult struct {
	Asset   *catalog.MediaAsset
	Lesson  *catalog.Lesson
	Created bool
	State   MediaState
}

type MediaAggregate interface {
	Aggregate
	RegisterVerifiedAsset(ctx context.Context, in RegisterAssetInput) (RegisterAssetResult, error)
}
