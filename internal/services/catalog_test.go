package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

func TestCatalogCreateCourseDerivesUniqueSlugs(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	ctx := h.as(author)

	first, err := h.catalog.CreateCourse(ctx, CourseInput{Title: "Intro à Go", PricingType: "paid", PriceMinor: 5000})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	second, err := h.catalog.CreateCourse(ctx, CourseInput{Title: "Intro a Go"})
	if err != nil {
		t.Fatalf("CreateCourse second: %v", err)
	}
	if first.Slug != "intro-a-go" || second.Slug != "intro-a-go-2" {
		t.Fatalf("slugs: want=intro-a-go,intro-a-go-2 got=%s,%s", first.Slug, second.Slug)
	}
	if first.Status != types.CourseStatusDraft || first.InstructorID != author.ID {
		t.Fatalf("course: got=%+v", first)
	}
	if second.PricingType != types.PricingFree || second.PriceMinor != 0 {
		t.Fatalf("default pricing: want FREE/0 got=%s/%d", second.PricingType, second.PriceMinor)
	}
}

func TestCatalogCreateCourseRequiresInstructor(t *testing.T) {
	h := newHarness(t)
	learner := h.learner(t, "learner@example.com")

	_, err := h.catalog.CreateCourse(h.as(learner), CourseInput{Title: "Nope"})
	wantCode(t, "learner create", err, domainagg.CodeForbidden)

	author := h.instructor(t, "author@example.com")
	_, err = h.catalog.CreateCourse(h.as(author), CourseInput{Title: ""})
	wantCode(t, "empty title", err, domainagg.CodeValidation)
	_, err = h.catalog.CreateCourse(h.as(author), CourseInput{Title: "Internal", CompanyOnly: true})
	wantCode(t, "company only without company", err, domainagg.CodeValidation)
}

func TestCatalogPublishSetsPublishedAtOnce(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	ctx := h.as(author)
	course, err := h.catalog.CreateCourse(ctx, CourseInput{Title: "Publishing"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	published, err := h.catalog.PublishCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("PublishCourse: %v", err)
	}
	if published.Status != types.CourseStatusPublished || published.PublishedAt == nil {
		t.Fatalf("PublishCourse: got=%+v", published)
	}
	first := *published.PublishedAt

	again, err := h.catalog.PublishCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("PublishCourse again: %v", err)
	}
	if again.PublishedAt == nil || !again.PublishedAt.Equal(first) {
		t.Fatalf("published_at: want=%v got=%v", first, again.PublishedAt)
	}

	other := h.instructor(t, "other@example.com")
	_, err = h.catalog.ArchiveCourse(h.as(other), course.ID)
	wantCode(t, "archive by non-owner", err, domainagg.CodeForbidden)
}

func TestCatalogGetCourseHidesDraftsFromOthers(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	draft := testutil.SeedCourse(t, h.ctx, h.db, author.ID, types.CourseStatusDraft)

	_, err := h.catalog.GetCourse(h.ctx, draft.ID)
	wantCode(t, "anonymous draft", err, domainagg.CodeNotFound)
	_, err = h.catalog.GetCourse(h.as(h.learner(t, "l@example.com")), draft.ID)
	wantCode(t, "learner draft", err, domainagg.CodeNotFound)

	detail, err := h.catalog.GetCourse(h.as(author), draft.ID)
	if err != nil {
		t.Fatalf("owner draft: %v", err)
	}
	if detail.Course.ID != draft.ID || detail.Outline == nil {
		t.Fatalf("owner draft: got=%+v", detail)
	}
}

func TestCatalogOutlineFollowsPositions(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, author.ID, 2, 1)

	outline, err := h.catalog.Outline(h.ctx, course.ID)
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if len(outline.Sections) != 2 || outline.LessonCount() != 3 {
		t.Fatalf("Outline: want 2 sections/3 lessons got=%d/%d", len(outline.Sections), outline.LessonCount())
	}
	var got []uuid.UUID
	for _, s := range outline.Sections {
		for _, l := range s.Lessons {
			got = append(got, l.ID)
		}
	}
	for i := range lessons {
		if got[i] != lessons[i].ID {
			t.Fatalf("lesson %d: want=%s got=%s", i, lessons[i].ID, got[i])
		}
	}
}

func TestCatalogCreateLessonChecksSectionAndMedia(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	ctx := h.as(author)

	course, err := h.catalog.CreateCourse(ctx, CourseInput{Title: "Video course"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	section, err := h.catalog.CreateSection(ctx, course.ID, SectionInput{Title: "Basics"})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if section.Position != 1 {
		t.Fatalf("section position: want=1 got=%d", section.Position)
	}

	key := "media/" + author.ID.String() + "/video/clip.mp4"
	h.storage.putObject(objectstore.CategoryMedia, key, "video/mp4", 4_000_000)
	fin, err := h.media.FinalizeUpload(ctx, FinalizeUploadInput{
		ObjectKey: key, DeclaredSize: 4_000_000, DeclaredContentType: "video/mp4", Kind: "video",
	})
	if err != nil {
		t.Fatalf("FinalizeUpload: %v", err)
	}

	lesson, err := h.catalog.CreateLesson(ctx, course.ID, section.ID, LessonInput{Title: "Clip", MediaAssetID: &fin.Asset.ID})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	if lesson.LessonType != types.LessonVideo || lesson.Position != 1 {
		t.Fatalf("lesson: got type=%s pos=%d", lesson.LessonType, lesson.Position)
	}

	if err := h.storage.Delete(h.ctx, objectstore.CategoryMedia, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = h.catalog.CreateLesson(ctx, course.ID, section.ID, LessonInput{Title: "Gone", MediaAssetID: &fin.Asset.ID})
	wantCode(t, "missing object", err, domainagg.CodeObjectNotFound)

	otherCourse, err := h.catalog.CreateCourse(ctx, CourseInput{Title: "Other"})
	if err != nil {
		t.Fatalf("CreateCourse other: %v", err)
	}
	_, err = h.catalog.CreateLesson(ctx, otherCourse.ID, section.ID, LessonInput{Title: "Wrong section"})
	wantCode(t, "cross course section", err, domainagg.CodeCrossCourse)

	intruder := h.instructor(t, "intruder@example.com")
	_, err = h.catalog.CreateLesson(h.as(intruder), course.ID, section.ID, LessonInput{Title: "Hijack"})
	wantCode(t, "non-owner lesson", err, domainagg.CodeForbidden)
}

func TestCatalogCategoriesAreAdminOnly(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	_, err := h.catalog.CreateCategory(h.as(author), "Data")
	wantCode(t, "instructor category", err, domainagg.CodeForbidden)

	admin := h.learner(t, "root@example.com")
	admin.Role = types.RoleSuperAdmin
	ctx := h.as(admin)
	cat, err := h.catalog.CreateCategory(ctx, "Data Science")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.Slug != "data-science" {
		t.Fatalf("category slug: want=data-science got=%s", cat.Slug)
	}
	_, err = h.catalog.CreateCategory(ctx, "Data Science")
	wantCode(t, "duplicate category", err, domainagg.CodeConflict)

	list, err := h.catalog.ListCategories(h.ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListCategories: want 1 got=%d err=%v", len(list), err)
	}
}
