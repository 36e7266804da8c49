package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

// LessonPatch updates only the non-nil fields.
type LessonPatch struct {
	Title        *string `validate:"omitempty,min=1,max=200"`
	LessonType   *string `validate:"omitempty,oneof=VIDEO TEXT FILE QUIZ LIVE"`
	IsPreview    *bool
	DurationSec  *int    `validate:"omitempty,gte=0"`
	Content      *string `validate:"omitempty,max=100000"`
	VideoURL     *string `validate:"omitempty,url"`
	MediaAssetID *uuid.UUID
}

// RemovalResult reports what a section or lesson delete took with it.
type RemovalResult struct {
	SectionsDeleted  int   `json:"sections_deleted"`
	LessonsDeleted   int   `json:"lessons_deleted"`
	ProgressDeleted  int64 `json:"progress_deleted"`
	EnrollmentsReset int64 `json:"enrollments_reset"`
}

func (s *catalogService) UpdateSection(ctx context.Context, courseID, sectionID uuid.UUID, in SectionInput) (*types.CourseSection, error) {
	const op = "Catalog.UpdateSection"
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	var section *types.CourseSection
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		course, err := s.lockOwnedCourse(dbc, op, rd, courseID)
		if err != nil {
			return err
		}
		section, err = s.sectionOf(dbc, op, course, sectionID)
		if err != nil {
			return err
		}
		section.Title = in.Title
		return s.sections.UpdateFields(dbc, section.ID, map[string]interface{}{"title": section.Title})
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.InvalidateOutline(ctx, courseID)
	return section, nil
}

// DeleteSection removes a section with all of its lessons.
func (s *catalogService) DeleteSection(ctx context.Context, courseID, sectionID uuid.UUID) (*RemovalResult, error) {
	const op = "Catalog.DeleteSection"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	out := &RemovalResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		course, err := s.lockOwnedCourse(dbc, op, rd, courseID)
		if err != nil {
			return err
		}
		section, err := s.sectionOf(dbc, op, course, sectionID)
		if err != nil {
			return err
		}
		ids, err := s.lessons.ListIDsBySection(dbc, section.ID)
		if err != nil {
			return err
		}
		if err := s.removeLessons(dbc, op, ids, out); err != nil {
			return err
		}
		if err := s.sections.Delete(dbc, section.ID); err != nil {
			return err
		}
		out.SectionsDeleted = 1
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.InvalidateOutline(ctx, courseID)
	s.log.Info("Section deleted", "course_id", courseID, "section_id", sectionID, "lessons", out.LessonsDeleted)
	return out, nil
}

func (s *catalogService) UpdateLesson(ctx context.Context, courseID, sectionID, lessonID uuid.UUID, patch LessonPatch) (*types.Lesson, error) {
	const op = "Catalog.UpdateLesson"
	if patch.Title != nil {
		*patch.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.LessonType != nil {
		*patch.LessonType = strings.ToUpper(strings.TrimSpace(*patch.LessonType))
	}
	if patch.VideoURL != nil {
		*patch.VideoURL = strings.TrimSpace(*patch.VideoURL)
	}
	if err := validateInput(op, patch); err != nil {
		return nil, err
	}
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	var asset *types.MediaAsset
	if patch.MediaAssetID != nil {
		asset, err = s.lessonAsset(ctx, op, rd, *patch.MediaAssetID)
		if err != nil {
			return nil, err
		}
	}

	var lesson *types.Lesson
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		course, err := s.lockOwnedCourse(dbc, op, rd, courseID)
		if err != nil {
			return err
		}
		section, err := s.sectionOf(dbc, op, course, sectionID)
		if err != nil {
			return err
		}
		lesson, err = s.lessonOf(dbc, op, section, lessonID)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if patch.Title != nil {
			lesson.Title = *patch.Title
			updates["title"] = lesson.Title
		}
		if patch.LessonType != nil {
			lesson.LessonType = types.LessonType(*patch.LessonType)
			updates["lesson_type"] = lesson.LessonType
		}
		if patch.IsPreview != nil {
			lesson.IsPreview = *patch.IsPreview
			updates["is_preview"] = lesson.IsPreview
		}
		if patch.DurationSec != nil {
			lesson.DurationSec = *patch.DurationSec
			updates["duration_sec"] = lesson.DurationSec
		}
		if patch.Content != nil {
			lesson.Content = *patch.Content
			updates["content"] = lesson.Content
		}
		if patch.VideoURL != nil {
			lesson.VideoURL = *patch.VideoURL
			updates["video_url"] = lesson.VideoURL
		}
		if asset != nil {
			lesson.MediaAssetID = &asset.ID
			updates["media_asset_id"] = asset.ID
		}
		return s.lessons.UpdateFields(dbc, lesson.ID, updates)
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.InvalidateOutline(ctx, courseID)
	return lesson, nil
}

// DeleteLesson removes a lesson together with learner progress on it.
func (s *catalogService) DeleteLesson(ctx context.Context, courseID, sectionID, lessonID uuid.UUID) (*RemovalResult, error) {
	const op = "Catalog.DeleteLesson"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	out := &RemovalResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		course, err := s.lockOwnedCourse(dbc, op, rd, courseID)
		if err != nil {
			return err
		}
		section, err := s.sectionOf(dbc, op, course, sectionID)
		if err != nil {
			return err
		}
		lesson, err := s.lessonOf(dbc, op, section, lessonID)
		if err != nil {
			return err
		}
		return s.removeLessons(dbc, op, []uuid.UUID{lesson.ID}, out)
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.InvalidateOutline(ctx, courseID)
	s.log.Info("Lesson deleted", "course_id", courseID, "lesson_id", lessonID, "progress_rows", out.ProgressDeleted)
	return out, nil
}

func (s *catalogService) sectionOf(dbc dbctx.Context, op string, course *types.Course, sectionID uuid.UUID) (*types.CourseSection, error) {
	section, err := s.sections.GetByID(dbc, sectionID)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, domainagg.NotFound(op, "section not found")
	}
	if section.CourseID != course.ID {
		return nil, domainagg.CrossCourse(op, "section belongs to another course")
	}
	return section, nil
}

func (s *catalogService) lessonOf(dbc dbctx.Context, op string, section *types.CourseSection, lessonID uuid.UUID) (*types.Lesson, error) {
	lesson, err := s.lessons.LockByID(dbc, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, domainagg.NotFound(op, "lesson not found")
	}
	if lesson.SectionID != section.ID {
		return nil, domainagg.CrossCourse(op, "lesson belongs to another section")
	}
	return lesson, nil
}

// removeLessons deletes lessons and the learner state that points at them.
// Lessons with a bound quiz are refused so attempts keep their quiz.
func (s *catalogService) removeLessons(dbc dbctx.Context, op string, ids []uuid.UUID, out *RemovalResult) error {
	if len(ids) == 0 {
		return nil
	}
	quizzes, err := s.quizzes.CountByLessons(dbc, ids)
	if err != nil {
		return err
	}
	if quizzes > 0 {
		return domainagg.NewError(domainagg.CodeConflict, op, "lesson has a quiz attached", nil)
	}
	n, err := s.progress.DeleteByLessons(dbc, ids)
	if err != nil {
		return err
	}
	out.ProgressDeleted += n
	reset, err := s.enrolled.ClearCurrentLesson(dbc, ids)
	if err != nil {
		return err
	}
	out.EnrollmentsReset += reset
	if err := s.lessons.DeleteByIDs(dbc, ids); err != nil {
		return err
	}
	out.LessonsDeleted += len(ids)
	return nil
}
