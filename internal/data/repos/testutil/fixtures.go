package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "pw",
		FullName:     "Test User",
		Role:         types.RoleLearner,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedInstructor(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, email)
	if err := tx.WithContext(ctx).Model(u).Update("role", types.RoleInstructor).Error; err != nil {
		tb.Fatalf("seed instructor role: %v", err)
	}
	u.Role = types.RoleInstructor
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, instructorID uuid.UUID, status types.CourseStatus) *types.Course {
	tb.Helper()
	id := uuid.New()
	c := &types.Course{
		ID:           id,
		Title:        "Course " + id.String()[:8],
		Slug:         "course-" + id.String(),
		InstructorID: instructorID,
		Status:       status,
		PricingType:  types.PricingPaid,
		PriceMinor:   15000,
		Currency:     "XOF",
	}
	if status == types.CourseStatusPublished {
		now := time.Now().UTC()
		c.PublishedAt = &now
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, position int) *types.CourseSection {
	tb.Helper()
	s := &types.CourseSection{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    fmt.Sprintf("Section %d", position),
		Position: position,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, section *types.CourseSection, position int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:         uuid.New(),
		SectionID:  section.ID,
		CourseID:   section.CourseID,
		Title:      fmt.Sprintf("Lesson %d.%d", section.Position, position),
		Position:   position,
		LessonType: types.LessonText,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// SeedCourseOutline creates a published course with one section per entry of
// lessonsPerSection. Sections and lessons are inserted in reverse so that
// ordering must come from positions, not insertion order. Lessons are
// returned in course order.
func SeedCourseOutline(tb testing.TB, ctx context.Context, tx *gorm.DB, instructorID uuid.UUID, lessonsPerSection ...int) (*types.Course, []*types.Lesson) {
	tb.Helper()
	course := SeedCourse(tb, ctx, tx, instructorID, types.CourseStatusPublished)
	bySection := make([][]*types.Lesson, len(lessonsPerSection))
	for si := len(lessonsPerSection) - 1; si >= 0; si-- {
		section := SeedSection(tb, ctx, tx, course.ID, si+1)
		lessons := make([]*types.Lesson, lessonsPerSection[si])
		for li := lessonsPerSection[si] - 1; li >= 0; li-- {
			lessons[li] = SeedLesson(tb, ctx, tx, section, li+1)
		}
		bySection[si] = lessons
	}
	var ordered []*types.Lesson
	for _, ls := range bySection {
		ordered = append(ordered, ls...)
	}
	return course, ordered
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		Status:   types.EnrollmentActive,
		Source:   types.SourceB2C,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uuid.UUID, percent int, completed bool) *types.LessonProgress {
	tb.Helper()
	p := &types.LessonProgress{
		ID:              uuid.New(),
		EnrollmentID:    enrollmentID,
		LessonID:        lessonID,
		ProgressPercent: percent,
		Completed:       completed,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}

// SeedFinalQuiz creates a course-level quiz with one question per entry in
// questions; each question gets a correct and a wrong choice. It returns the
// quiz and the correct choice id per question id.
func SeedFinalQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, questions int) (*types.Quiz, map[uuid.UUID]uuid.UUID, map[uuid.UUID]uuid.UUID) {
	tb.Helper()
	q := &types.Quiz{ID: uuid.New(), CourseID: courseID, Title: "Final exam", PassingScore: 70, MaxAttempts: 3}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	correct := map[uuid.UUID]uuid.UUID{}
	wrong := map[uuid.UUID]uuid.UUID{}
	for i := 0; i < questions; i++ {
		question := &types.Question{ID: uuid.New(), QuizID: q.ID, Prompt: fmt.Sprintf("Q%d", i+1), Position: i + 1}
		if err := tx.WithContext(ctx).Create(question).Error; err != nil {
			tb.Fatalf("seed question: %v", err)
		}
		right := &types.Choice{ID: uuid.New(), QuestionID: question.ID, Text: "right", IsCorrect: true}
		bad := &types.Choice{ID: uuid.New(), QuestionID: question.ID, Text: "wrong"}
		if err := tx.WithContext(ctx).Create([]*types.Choice{right, bad}).Error; err != nil {
			tb.Fatalf("seed choices: %v", err)
		}
		correct[question.ID] = right.ID
		wrong[question.ID] = bad.ID
	}
	return q, correct, wrong
}

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, quizID, userID uuid.UUID, score int, passed bool) *types.Attempt {
	tb.Helper()
	now := time.Now().UTC()
	a := &types.Attempt{
		ID:           uuid.New(),
		QuizID:       quizID,
		UserID:       userID,
		StartedAt:    now.Add(-time.Minute),
		SubmittedAt:  &now,
		ScorePercent: score,
		Passed:       passed,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}

func SeedCompany(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Company {
	tb.Helper()
	c := &types.Company{ID: uuid.New(), Name: name, Slug: "company-" + uuid.NewString()[:8]}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed company: %v", err)
	}
	return c
}

func SeedMember(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID, userID uuid.UUID, role types.MemberRole) *types.CompanyMember {
	tb.Helper()
	m := &types.CompanyMember{ID: uuid.New(), CompanyID: companyID, UserID: userID, Role: role}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed member: %v", err)
	}
	return m
}

func SeedLicense(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, seats int) *types.CompanyLicense {
	tb.Helper()
	l := &types.CompanyLicense{ID: uuid.New(), CompanyID: companyID, SeatsTotal: seats}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed license: %v", err)
	}
	return l
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.CertificateTemplate {
	tb.Helper()
	tpl := &types.CertificateTemplate{ID: uuid.New(), Name: name, SignatureName: "Dr. A. Sow", SignatureTitle: "Director"}
	if err := tx.WithContext(ctx).Create(tpl).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return tpl
}
