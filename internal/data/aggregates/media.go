package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/catalog"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type MediaAggregateDeps struct {
	Base BaseDeps

	Assets  repos.MediaAssetRepo
	Courses repos.CourseRepo
	Lessons repos.LessonRepo
}

type mediaAggregate struct {
	deps MediaAggregateDeps
}

func NewMediaAggregate(deps MediaAggregateDeps) domainagg.MediaAggregate {
	deps.Base = deps.Base.withDefaults()
	return &mediaAggregate{deps: deps}
}

func (a *mediaAggregate) Contract() domainagg.Contract {
	return domainagg.MediaAggregateContract
}

func (a *mediaAggregate) RegisterVerifiedAsset(ctx context.Context, in domainagg.RegisterAssetInput) (domainagg.RegisterAssetResult, error) {
	const op = "Media.RegisterVerifiedAsset"
	var out domainagg.RegisterAssetResult
	key := strings.TrimSpace(in.ObjectKey)
	if in.OwnerID == uuid.Nil {
		return out, domainagg.Invalid(op, "missing owner_id")
	}
	if key == "" {
		return out, domainagg.Invalid(op, "missing object_key")
	}
	if !in.Kind.Valid() {
		return out, domainagg.Invalid(op, fmt.Sprintf("invalid kind %q", in.Kind))
	}
	if b := in.Binding; b != nil && (b.CourseID == uuid.Nil || b.LessonID == uuid.Nil) {
		return out, domainagg.Invalid(op, "binding requires course_id and lesson_id")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		asset, created, err := getOrCreate(dbc,
			func(d dbctx.Context) (*catalog.MediaAsset, error) {
				return a.deps.Assets.GetByObjectKey(d, key)
			},
			func(d dbctx.Context) (*catalog.MediaAsset, error) {
				row := &catalog.MediaAsset{
					OwnerID:             in.OwnerID,
					Kind:                in.Kind,
					Title:               strings.TrimSpace(in.Title),
					ObjectKey:           key,
					ContentType:         in.ContentType,
					SizeBytes:           in.SizeBytes,
					DeclaredContentType: in.DeclaredContentType,
					DeclaredSizeBytes:   in.DeclaredSizeBytes,
					DurationSeconds:     in.DurationSeconds,
				}
				if _, err := a.deps.Assets.Create(d, []*catalog.MediaAsset{row}); err != nil {
					return nil, err
				}
				return row, nil
			},
		)
		if err != nil {
			return err
		}
		if asset.OwnerID != in.OwnerID {
			return domainagg.Forbidden(op, "object key belongs to another owner")
		}
		out.Asset = asset
		out.Created = created
		out.State = domainagg.MediaStateVerified

		if in.Binding == nil {
			return nil
		}
		lesson, err := a.bind(dbc, op, in.OwnerID, asset, *in.Binding)
		if err != nil {
			return err
		}
		out.Lesson = lesson
		out.State = domainagg.MediaStateBound
		return nil
	})
	return out, err
}

func (a *mediaAggregate) bind(dbc dbctx.Context, op string, ownerID uuid.UUID, asset *catalog.MediaAsset, b domainagg.LessonBinding) (*catalog.Lesson, error) {
	course, err := a.deps.Courses.GetByID(dbc, b.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, domainagg.NotFound(op, fmt.Sprintf("course not found: %s", b.CourseID))
	}
	if course.InstructorID != ownerID {
		return nil, domainagg.Forbidden(op, "course is owned by another instructor")
	}
	lesson, err := a.deps.Lessons.LockByID(dbc, b.LessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, domainagg.NotFound(op, fmt.Sprintf("lesson not found: %s", b.LessonID))
	}
	if lesson.CourseID != course.ID || (b.SectionID != nil && *b.SectionID != lesson.SectionID) {
		return nil, domainagg.CrossCourse(op, "lesson does not belong to the given course/section")
	}

	lessonType := asset.Kind.LessonType()
	if err := a.deps.Lessons.UpdateFields(dbc, lesson.ID, map[string]interface{}{
		"media_asset_id": asset.ID,
		"lesson_type":    lessonType,
	}); err != nil {
		return nil, err
	}
	assetID := asset.ID
	lesson.MediaAssetID = &assetID
	lesson.LessonType = lessonType
	return lesson, nil
}
