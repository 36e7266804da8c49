package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/catalog"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/cache"
	"github.com/yungbote/coursemarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

const outlineKeyPrefix = "catalog:outline:"

func OutlineCacheKey(courseID uuid.UUID) string {
	return outlineKeyPrefix + courseID.String()
}

type OutlineLesson struct {
	ID           uuid.UUID        `json:"id"`
	Title        string           `json:"title"`
	Position     int              `json:"position"`
	LessonType   types.LessonType `json:"lesson_type"`
	IsPreview    bool             `json:"is_preview"`
	DurationSec  int              `json:"duration_sec"`
	MediaAssetID *uuid.UUID       `json:"media_asset_id,omitempty"`
}

type OutlineSection struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Position int             `json:"position"`
	Lessons  []OutlineLesson `json:"lessons"`
}

// CourseOutline is the ordered section/lesson tree of a course. It carries
// no learner state and is safe to cache.
type CourseOutline struct {
	CourseID uuid.UUID        `json:"course_id"`
	Sections []OutlineSection `json:"sections"`
}

func (o *CourseOutline) LessonCount() int {
	n := 0
	for _, s := range o.Sections {
		n += len(s.Lessons)
	}
	return n
}

type CourseDetail struct {
	Course  *types.Course  `json:"course"`
	Outline *CourseOutline `json:"outline"`
}

type CourseQuery struct {
	Query       string
	CategoryID  *uuid.UUID
	CourseType  string `validate:"omitempty,oneof=CERTIFIANTE PROFESSIONNELLE ACADEMIQUE INTERNE"`
	PricingType string `validate:"omitempty,oneof=FREE PAID HYBRID"`
	Limit       int
	Offset      int
}

type CourseInput struct {
	Title       string `validate:"required,max=200"`
	Subtitle    string `validate:"max=300"`
	Description string `validate:"max=20000"`
	CategoryID  *uuid.UUID
	CourseType  string `validate:"omitempty,oneof=CERTIFIANTE PROFESSIONNELLE ACADEMIQUE INTERNE"`
	PricingType string `validate:"omitempty,oneof=FREE PAID HYBRID"`
	PriceMinor  int64  `validate:"gte=0"`
	Currency    string `validate:"omitempty,len=3"`
	CompanyOnly bool
	CompanyID   *uuid.UUID
}

// CoursePatch updates only the non-nil fields.
type CoursePatch struct {
	Title       *string `validate:"omitempty,min=1,max=200"`
	Subtitle    *string `validate:"omitempty,max=300"`
	Description *string `validate:"omitempty,max=20000"`
	CategoryID  *uuid.UUID
	CourseType  *string `validate:"omitempty,oneof=CERTIFIANTE PROFESSIONNELLE ACADEMIQUE INTERNE"`
	PricingType *string `validate:"omitempty,oneof=FREE PAID HYBRID"`
	PriceMinor  *int64  `validate:"omitempty,gte=0"`
	Currency    *string `validate:"omitempty,len=3"`
}

type SectionInput struct {
	Title string `validate:"required,max=200"`
}

type LessonInput struct {
	Title        string `validate:"required,max=200"`
	LessonType   string `validate:"omitempty,oneof=VIDEO TEXT FILE QUIZ LIVE"`
	IsPreview    bool
	DurationSec  int    `validate:"gte=0"`
	Content      string `validate:"max=100000"`
	VideoURL     string `validate:"omitempty,url"`
	MediaAssetID *uuid.UUID
}

type CatalogService interface {
	ListPublishedCourses(ctx context.Context, q CourseQuery) ([]*types.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*CourseDetail, error)
	ListCategories(ctx context.Context) ([]*types.Category, error)
	CreateCategory(ctx context.Context, name string) (*types.Category, error)

	CreateCourse(ctx context.Context, in CourseInput) (*types.Course, error)
	UpdateCourse(ctx context.Context, courseID uuid.UUID, patch CoursePatch) (*types.Course, error)
	PublishCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	ArchiveCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	MyCourses(ctx context.Context) ([]*types.Course, error)
	CreateSection(ctx context.Context, courseID uuid.UUID, in SectionInput) (*types.CourseSection, error)
	CreateLesson(ctx context.Context, courseID, sectionID uuid.UUID, in LessonInput) (*types.Lesson, error)
	UpdateSection(ctx context.Context, courseID, sectionID uuid.UUID, in SectionInput) (*types.CourseSection, error)
	DeleteSection(ctx context.Context, courseID, sectionID uuid.UUID) (*RemovalResult, error)
	UpdateLesson(ctx context.Context, courseID, sectionID, lessonID uuid.UUID, patch LessonPatch) (*types.Lesson, error)
	DeleteLesson(ctx context.Context, courseID, sectionID, lessonID uuid.UUID) (*RemovalResult, error)

	Outline(ctx context.Context, courseID uuid.UUID) (*CourseOutline, error)
	InvalidateOutline(ctx context.Context, courseIDs ...uuid.UUID)
}

type catalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	categories repos.CategoryRepo
	courses    repos.CourseRepo
	sections   repos.CourseSectionRepo
	lessons    repos.LessonRepo
	assets     repos.MediaAssetRepo
	quizzes    repos.QuizRepo
	enrolled   repos.EnrollmentRepo
	progress   repos.LessonProgressRepo
	storage    objectstore.Gateway
	outlines   *cache.ReadThrough[*CourseOutline]
	now        func() time.Time
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	categories repos.CategoryRepo,
	courses repos.CourseRepo,
	sections repos.CourseSectionRepo,
	lessons repos.LessonRepo,
	assets repos.MediaAssetRepo,
	quizzes repos.QuizRepo,
	enrolled repos.EnrollmentRepo,
	progress repos.LessonProgressRepo,
	storage objectstore.Gateway,
	outlineCache cache.Cache,
	outlineTTL time.Duration,
) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	if outlineCache == nil {
		outlineCache = cache.Noop{}
	}
	return &catalogService{
		db:         db,
		log:        serviceLog,
		categories: categories,
		courses:    courses,
		sections:   sections,
		lessons:    lessons,
		assets:     assets,
		quizzes:    quizzes,
		enrolled:   enrolled,
		progress:   progress,
		storage:    storage,
		outlines: cache.NewReadThrough[*CourseOutline](outlineCache, serviceLog, outlineTTL, func(result string) {
			observability.Current().IncOutlineCache(result)
		}),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *catalogService) ListPublishedCourses(ctx context.Context, q CourseQuery) ([]*types.Course, error) {
	q.CourseType = strings.ToUpper(strings.TrimSpace(q.CourseType))
	q.PricingType = strings.ToUpper(strings.TrimSpace(q.PricingType))
	if err := validateInput("Catalog.ListPublishedCourses", q); err != nil {
		return nil, err
	}
	out, err := s.courses.ListPublished(dbctx.New(ctx), repos.CourseFilter{
		CategoryID:  q.CategoryID,
		CourseType:  types.CourseType(q.CourseType),
		PricingType: types.PricingType(q.PricingType),
		Query:       q.Query,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list published courses: %w", err)
	}
	return out, nil
}

// GetCourse returns a published course with its outline. Unpublished courses
// are visible only to their author.
func (s *catalogService) GetCourse(ctx context.Context, courseID uuid.UUID) (*CourseDetail, error) {
	const op = "Catalog.GetCourse"
	course, err := s.courses.GetByID(dbctx.New(ctx), courseID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if course == nil {
		return nil, domainagg.NotFound(op, "course not found")
	}
	if !course.IsPublished() {
		rd, _ := requireActor(ctx)
		if !ownsCourse(rd, course) {
			return nil, domainagg.NotFound(op, "course not found")
		}
	}
	outline, err := s.Outline(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{Course: course, Outline: outline}, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*types.Category, error) {
	out, err := s.categories.List(dbctx.New(ctx))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, name string) (*types.Category, error) {
	const op = "Catalog.CreateCategory"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !isSuperAdmin(rd) {
		return nil, domainagg.Forbidden(op, "only administrators manage categories")
	}
	name = strings.TrimSpace(name)
	slug := catalog.Slugify(name)
	if name == "" || slug == "" {
		return nil, domainagg.Invalid(op, "name is required")
	}
	row := &types.Category{ID: uuid.New(), Name: name, Slug: slug}
	if _, err := s.categories.Create(dbctx.New(ctx), []*types.Category{row}); err != nil {
		if aggregates.IsUniqueViolation(err) {
			return nil, domainagg.NewError(domainagg.CodeConflict, op, "category already exists", err)
		}
		return nil, aggregates.MapError(op, err)
	}
	return row, nil
}

func (s *catalogService) CreateCourse(ctx context.Context, in CourseInput) (*types.Course, error) {
	const op = "Catalog.CreateCourse"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canAuthor(rd) {
		return nil, domainagg.Forbidden(op, "instructor role required")
	}
	in.Title = strings.TrimSpace(in.Title)
	in.CourseType = strings.ToUpper(strings.TrimSpace(in.CourseType))
	in.PricingType = strings.ToUpper(strings.TrimSpace(in.PricingType))
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	if in.CompanyOnly && (in.CompanyID == nil || *in.CompanyID == uuid.Nil) {
		return nil, domainagg.Invalid(op, "company_id is required for company-only courses")
	}
	base := catalog.Slugify(in.Title)
	if base == "" {
		base = "course"
	}

	course := &types.Course{
		ID:           uuid.New(),
		Title:        in.Title,
		Subtitle:     strings.TrimSpace(in.Subtitle),
		Description:  in.Description,
		CategoryID:   in.CategoryID,
		InstructorID: rd.UserID,
		CourseType:   types.CourseType(in.CourseType),
		PricingType:  types.PricingType(in.PricingType),
		PriceMinor:   in.PriceMinor,
		Currency:     in.Currency,
		Status:       types.CourseStatusDraft,
		CompanyOnly:  in.CompanyOnly,
		CompanyID:    in.CompanyID,
	}
	course.Normalize()

	// A concurrent insert can take the slug between the lookup and the
	// insert; the unique index rejects it and the lookup runs again.
	for attempt := 0; attempt < 3; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			if in.CategoryID != nil {
				cat, err := s.categories.GetByID(dbc, *in.CategoryID)
				if err != nil {
					return err
				}
				if cat == nil {
					return domainagg.NotFound(op, "category not found")
				}
			}
			slug, err := s.uniqueSlug(dbc, base)
			if err != nil {
				return err
			}
			course.Slug = slug
			_, err = s.courses.Create(dbc, []*types.Course{course})
			return err
		})
		if err == nil || !aggregates.IsUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("Course created", "course_id", course.ID, "slug", course.Slug, "instructor_id", rd.UserID)
	return course, nil
}

func (s *catalogService) uniqueSlug(dbc dbctx.Context, base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		exists, err := s.courses.SlugExists(dbc, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *catalogService) UpdateCourse(ctx context.Context, courseID uuid.UUID, patch CoursePatch) (*types.Course, error) {
	const op = "Catalog.UpdateCourse"
	if err := validateInput(op, patch); err != nil {
		return nil, err
	}
	return s.mutateOwnedCourse(ctx, op, courseID, func(course *types.Course) (map[string]interface{}, error) {
		updates := map[string]interface{}{}
		if patch.Title != nil {
			course.Title = strings.TrimSpace(*patch.Title)
			updates["title"] = course.Title
		}
		if patch.Subtitle != nil {
			course.Subtitle = strings.TrimSpace(*patch.Subtitle)
			updates["subtitle"] = course.Subtitle
		}
		if patch.Description != nil {
			course.Description = *patch.Description
			updates["description"] = course.Description
		}
		if patch.CategoryID != nil {
			course.CategoryID = patch.CategoryID
			updates["category_id"] = *patch.CategoryID
		}
		if patch.CourseType != nil {
			course.CourseType = types.CourseType(strings.ToUpper(*patch.CourseType))
			updates["course_type"] = course.CourseType
		}
		if patch.PricingType != nil {
			course.PricingType = types.PricingType(strings.ToUpper(*patch.PricingType))
			updates["pricing_type"] = course.PricingType
		}
		if patch.PriceMinor != nil {
			course.PriceMinor = *patch.PriceMinor
		}
		if patch.Currency != nil {
			course.Currency = strings.ToUpper(*patch.Currency)
			updates["currency"] = course.Currency
		}
		if patch.PriceMinor != nil || patch.PricingType != nil {
			course.Normalize()
			updates["price_minor"] = course.PriceMinor
		}
		return updates, nil
	})
}

func (s *catalogService) PublishCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	return s.mutateOwnedCourse(ctx, "Catalog.PublishCourse", courseID, func(course *types.Course) (map[string]interface{}, error) {
		if course.Status == types.CourseStatusPublished {
			return nil, nil
		}
		course.Status = types.CourseStatusPublished
		updates := map[string]interface{}{"status": course.Status}
		if course.PublishedAt == nil {
			now := s.now()
			course.PublishedAt = &now
			updates["published_at"] = now
		}
		return updates, nil
	})
}

func (s *catalogService) ArchiveCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	return s.mutateOwnedCourse(ctx, "Catalog.ArchiveCourse", courseID, func(course *types.Course) (map[string]interface{}, error) {
		if course.Status == types.CourseStatusArchived {
			return nil, nil
		}
		course.Status = types.CourseStatusArchived
		return map[string]interface{}{"status": course.Status}, nil
	})
}

// mutateOwnedCourse locks the course, checks ownership and writes whatever
// fields fn returns. An empty update set is a no-op.
func (s *catalogService) mutateOwnedCourse(ctx context.Context, op string, courseID uuid.UUID, fn func(course *types.Course) (map[string]interface{}, error)) (*types.Course, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	var out *types.Course
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		course, err := s.lockOwnedCourse(dbc, op, rd, courseID)
		if err != nil {
			return err
		}
		updates, err := fn(course)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := s.courses.UpdateFields(dbc, course.ID, updates); err != nil {
				return err
			}
		}
		out = course
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

// lockOwnedCourse locks the course row and checks the caller may edit it.
func (s *catalogService) lockOwnedCourse(dbc dbctx.Context, op string, rd *ctxutil.RequestData, courseID uuid.UUID) (*types.Course, error) {
	course, err := s.courses.LockByID(dbc, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, domainagg.NotFound(op, "course not found")
	}
	if !ownsCourse(rd, course) {
		return nil, domainagg.Forbidden(op, "course belongs to another instructor")
	}
	return course, nil
}

func (s *catalogService) MyCourses(ctx context.Context) ([]*types.Course, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canAuthor(rd) {
		return nil, domainagg.Forbidden("Catalog.MyCourses", "instructor role required")
	}
	out, err := s.courses.ListByInstructor(dbctx.New(ctx), rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return out, nil
}

func (s *catalogService) CreateSection(ctx context.Context, courseID uuid.UUID, in SectionInput) (*types.CourseSection, error) {
	const op = "Catalog.CreateSection"
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
		pos, err := s.sections.NextPosition(dbc, course.ID)
		if err != nil {
			return err
		}
		section = &types.CourseSection{ID: uuid.New(), CourseID: course.ID, Title: in.Title, Position: pos}
		_, err = s.sections.Create(dbc, []*types.CourseSection{section})
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.InvalidateOutline(ctx, courseID)
	return section, nil
}

// CreateLesson appends a lesson to a section. A referenced media asset must
// belong to the caller and its object must still be present in storage.
func (s *catalogService) CreateLesson(ctx context.Context, courseID, sectionID uuid.UUID, in LessonInput) (*types.Lesson, error) {
	const op = "Catalog.CreateLesson"
	in.Title = strings.TrimSpace(in.Title)
	in.LessonType = strings.ToUpper(strings.TrimSpace(in.LessonType))
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	var asset *types.MediaAsset
	if in.MediaAssetID != nil {
		asset, err = s.lessonAsset(ctx, op, rd, *in.MediaAssetID)
		if err != nil {
			return nil, err
		}
	}

	lesson := &types.Lesson{
		ID:          uuid.New(),
		SectionID:   sectionID,
		CourseID:    courseID,
		Title:       in.Title,
		LessonType:  types.LessonType(in.LessonType),
		IsPreview:   in.IsPreview,
		DurationSec: in.DurationSec,
		Content:     in.Content,
		VideoURL:    strings.TrimSpace(in.VideoURL),
	}
	if asset != nil {
		lesson.MediaAssetID = &asset.ID
		if lesson.LessonType == "" {
			lesson.LessonType = asset.Kind.LessonType()
		}
		if asset.DurationSeconds != nil && lesson.DurationSec == 0 {
			lesson.DurationSec = *asset.DurationSeconds
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		course, err := s.lockOwnedCourse(dbc, op, rd, courseID)
		if err != nil {
			return err
		}
		section, err := s.sections.GetByID(dbc, sectionID)
		if err != nil {
			return err
		}
		if section == nil {
			return domainagg.NotFound(op, "section not found")
		}
		if section.CourseID != course.ID {
			return domainagg.CrossCourse(op, "section belongs to another course")
		}
		pos, err := s.lessons.NextPosition(dbc, section.ID)
		if err != nil {
			return err
		}
		lesson.Position = pos
		_, err = s.lessons.Create(dbc, []*types.Lesson{lesson})
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.InvalidateOutline(ctx, courseID)
	return lesson, nil
}

// lessonAsset loads a media asset for a lesson. It must belong to the caller
// and its object must still be present in storage.
func (s *catalogService) lessonAsset(ctx context.Context, op string, rd *ctxutil.RequestData, assetID uuid.UUID) (*types.MediaAsset, error) {
	asset, err := s.assets.GetByID(dbctx.New(ctx), assetID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if asset == nil {
		return nil, domainagg.NotFound(op, "media asset not found")
	}
	if asset.OwnerID != rd.UserID && !isSuperAdmin(rd) {
		return nil, domainagg.Forbidden(op, "media asset belongs to another user")
	}
	if s.storage != nil {
		if _, err := s.storage.Head(ctx, objectstore.CategoryMedia, asset.ObjectKey); err != nil {
			if errors.Is(err, objectstore.ErrObjectNotFound) {
				return nil, domainagg.NewError(domainagg.CodeObjectNotFound, op, "media object missing from storage", err)
			}
			return nil, fmt.Errorf("head media object: %w", err)
		}
	}
	return asset, nil
}

func (s *catalogService) Outline(ctx context.Context, courseID uuid.UUID) (*CourseOutline, error) {
	return s.outlines.Get(ctx, OutlineCacheKey(courseID), func(ctx context.Context) (*CourseOutline, error) {
		return s.loadOutline(ctx, courseID)
	})
}

func (s *catalogService) loadOutline(ctx context.Context, courseID uuid.UUID) (*CourseOutline, error) {
	dbc := dbctx.New(ctx)
	sections, err := s.sections.ListByCourse(dbc, courseID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	lessons, err := s.lessons.ListByCourseOrdered(dbc, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return BuildOutline(courseID, sections, lessons), nil
}

// BuildOutline groups course-ordered lessons under their sections. Sections
// without lessons are kept.
func BuildOutline(courseID uuid.UUID, sections []*types.CourseSection, lessons []*types.Lesson) *CourseOutline {
	out := &CourseOutline{CourseID: courseID, Sections: make([]OutlineSection, 0, len(sections))}
	index := make(map[uuid.UUID]int, len(sections))
	for _, sec := range sections {
		index[sec.ID] = len(out.Sections)
		out.Sections = append(out.Sections, OutlineSection{
			ID:       sec.ID,
			Title:    sec.Title,
			Position: sec.Position,
			Lessons:  []OutlineLesson{},
		})
	}
	for _, l := range lessons {
		i, ok := index[l.SectionID]
		if !ok {
			continue
		}
		out.Sections[i].Lessons = append(out.Sections[i].Lessons, OutlineLesson{
			ID:           l.ID,
			Title:        l.Title,
			Position:     l.Position,
			LessonType:   l.LessonType,
			IsPreview:    l.IsPreview,
			DurationSec:  l.DurationSec,
			MediaAssetID: l.MediaAssetID,
		})
	}
	return out
}

func (s *catalogService) InvalidateOutline(ctx context.Context, courseIDs ...uuid.UUID) {
	if len(courseIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		keys = append(keys, OutlineCacheKey(id))
	}
	s.outlines.Invalidate(ctx, keys...)
}
