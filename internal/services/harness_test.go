package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/certdoc"
	"github.com/yungbote/coursemarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

// fakeGateway keeps object metadata in memory. Objects are added with
// putObject to simulate a client-side upload.
type fakeGateway struct {
	mu      sync.Mutex
	objects map[string]objectstore.ObjectInfo
	puts    map[string][]byte
	headErr error
	// failPuts makes the next n Put calls fail.
	failPuts int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{objects: map[string]objectstore.ObjectInfo{}, puts: map[string][]byte{}}
}

func objectID(category objectstore.Category, key string) string {
	return string(category) + ":" + key
}

func (g *fakeGateway) putObject(category objectstore.Category, key, contentType string, size int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[objectID(category, key)] = objectstore.ObjectInfo{Size: size, ContentType: contentType, Updated: time.Now().UTC()}
}

func (g *fakeGateway) PresignPut(_ context.Context, category objectstore.Category, key, _ string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s/%s?op=put&ttl=%d", category, key, int(ttl.Seconds())), nil
}

func (g *fakeGateway) PresignGet(_ context.Context, category objectstore.Category, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s/%s?op=get&ttl=%d", category, key, int(ttl.Seconds())), nil
}

func (g *fakeGateway) Head(_ context.Context, category objectstore.Category, key string) (*objectstore.ObjectInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.headErr != nil {
		return nil, g.headErr
	}
	info, ok := g.objects[objectID(category, key)]
	if !ok {
		return nil, objectstore.ErrObjectNotFound
	}
	return &info, nil
}

func (g *fakeGateway) Put(_ context.Context, category objectstore.Category, key, contentType string, r io.Reader, size int64) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failPuts > 0 {
		g.failPuts--
		return fmt.Errorf("put %s: storage unavailable", key)
	}
	g.puts[objectID(category, key)] = b
	g.objects[objectID(category, key)] = objectstore.ObjectInfo{Size: size, ContentType: contentType}
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, category objectstore.Category, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.objects, objectID(category, key))
	delete(g.puts, objectID(category, key))
	return nil
}

func (g *fakeGateway) stored(category objectstore.Category, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.puts[objectID(category, key)]
	return ok
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls []certdoc.CertificateData
}

func (r *fakeRenderer) Render(_ context.Context, data certdoc.CertificateData) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, data)
	return []byte("\x89PNG-" + data.Serial), nil
}

func (r *fakeRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type harness struct {
	ctx      context.Context
	db       *gorm.DB
	storage  *fakeGateway
	renderer *fakeRenderer

	enrollments  repos.EnrollmentRepo
	progressRows repos.LessonProgressRepo
	assets       repos.MediaAssetRepo

	catalog     CatalogService
	enrollment  EnrollmentService
	progress    ProgressService
	media       MediaService
	certificate CertificationService
	certAgg     domainagg.CertificateAggregate
	// newCertification builds a certification service around agg.
	newCertification func(agg domainagg.CertificateAggregate) CertificationService
	quiz             QuizService
	commerce         CommerceService
	company          CompanyService
	review           ReviewService
	dashboard        DashboardService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	base := aggregates.BaseDeps{DB: db, Log: log}

	users := repos.NewUserRepo(db, log)
	categories := repos.NewCategoryRepo(db, log)
	courses := repos.NewCourseRepo(db, log)
	sections := repos.NewCourseSectionRepo(db, log)
	lessons := repos.NewLessonRepo(db, log)
	assets := repos.NewMediaAssetRepo(db, log)
	enrollments := repos.NewEnrollmentRepo(db, log)
	progress := repos.NewLessonProgressRepo(db, log)
	quizzes := repos.NewQuizRepo(db, log)
	questions := repos.NewQuestionRepo(db, log)
	choices := repos.NewChoiceRepo(db, log)
	attempts := repos.NewAttemptRepo(db, log)
	answers := repos.NewAttemptAnswerRepo(db, log)
	templates := repos.NewCertificateTemplateRepo(db, log)
	certificates := repos.NewIssuedCertificateRepo(db, log)
	coupons := repos.NewCouponRepo(db, log)
	orders := repos.NewOrderRepo(db, log)
	orderItems := repos.NewOrderItemRepo(db, log)
	payments := repos.NewPaymentTransactionRepo(db, log)
	companies := repos.NewCompanyRepo(db, log)
	members := repos.NewCompanyMemberRepo(db, log)
	licenses := repos.NewCompanyLicenseRepo(db, log)
	assignments := repos.NewCompanyAssignmentRepo(db, log)
	invitations := repos.NewCompanyInvitationRepo(db, log)
	reviews := repos.NewReviewRepo(db, log)

	storage := newFakeGateway()
	renderer := &fakeRenderer{}

	enrollmentAgg := aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
		Base: base, Courses: courses, Lessons: lessons, Enrollments: enrollments, Progress: progress,
	})
	progressAgg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base: base, Lessons: lessons, Enrollments: enrollments, Progress: progress,
	})
	mediaAgg := aggregates.NewMediaAggregate(aggregates.MediaAggregateDeps{
		Base: base, Assets: assets, Courses: courses, Lessons: lessons,
	})
	certAgg := aggregates.NewCertificateAggregate(aggregates.CertificateAggregateDeps{
		Base: base, Enrollments: enrollments, Quizzes: quizzes, Attempts: attempts, Templates: templates, Certificates: certificates,
	})
	settlementAgg := aggregates.NewSettlementAggregate(aggregates.SettlementAggregateDeps{
		Base: base, Orders: orders, OrderItems: orderItems, Payments: payments, Coupons: coupons, Enrollments: enrollments, Licenses: licenses,
	})
	seatAgg := aggregates.NewSeatAggregate(aggregates.SeatAggregateDeps{
		Base: base, Companies: companies, Members: members, Licenses: licenses, Assignments: assignments, Courses: courses, Enrollments: enrollments,
	})

	invitationAgg := aggregates.NewInvitationAggregate(aggregates.InvitationAggregateDeps{
		Base: base, Companies: companies, Members: members, Invitations: invitations, Users: users,
	})

	catalog := NewCatalogService(db, log, categories, courses, sections, lessons, assets, quizzes, enrollments, progress, storage, nil, time.Minute)
	certs := NewCertificationService(log, users, courses, templates, certificates, certAgg, renderer, storage)

	return &harness{
		ctx:          context.Background(),
		db:           db,
		storage:      storage,
		renderer:     renderer,
		enrollments:  enrollments,
		progressRows: progress,
		assets:       assets,
		catalog:      catalog,
		enrollment:   NewEnrollmentService(log, courses, enrollments, enrollmentAgg),
		progress:     NewProgressService(log, enrollments, progress, catalog, progressAgg, certs),
		media:        NewMediaService(log, assets, lessons, enrollments, mediaAgg, storage, catalog, ""),
		certificate:  certs,
		certAgg:      certAgg,
		newCertification: func(agg domainagg.CertificateAggregate) CertificationService {
			return NewCertificationService(log, users, courses, templates, certificates, agg, renderer, storage)
		},
		quiz:     NewQuizService(db, log, courses, lessons, enrollments, quizzes, questions, choices, attempts, answers, certs),
		commerce: NewCommerceService(log, courses, coupons, payments, members, settlementAgg),
		company:  NewCompanyService(log, users, members, licenses, invitations, seatAgg, invitationAgg),
		review:   NewReviewService(log, courses, enrollments, reviews),
		dashboard: NewDashboardService(
			log, courses, enrollments, progress, certificates, orderItems, reviews, catalog,
		),
	}
}

// as returns a context authenticated as u.
func (h *harness) as(u *types.User) context.Context {
	return ctxutil.WithRequestData(h.ctx, &ctxutil.RequestData{UserID: u.ID, Role: string(u.Role)})
}

func (h *harness) learner(t *testing.T, email string) *types.User {
	t.Helper()
	return testutil.SeedUser(t, h.ctx, h.db, email)
}

func (h *harness) instructor(t *testing.T, email string) *types.User {
	t.Helper()
	return testutil.SeedInstructor(t, h.ctx, h.db, email)
}

func (h *harness) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (h *harness) setCourse(t *testing.T, course *types.Course, updates map[string]any) {
	t.Helper()
	if err := h.db.Model(&types.Course{}).Where("id = ?", course.ID).Updates(updates).Error; err != nil {
		t.Fatalf("update course: %v", err)
	}
}

func wantCode(t *testing.T, label string, err error, code domainagg.ErrorCode) {
	t.Helper()
	if !domainagg.IsCode(err, code) {
		t.Fatalf("%s: want code=%s got=%q err=%v", label, code, domainagg.CodeOf(err), err)
	}
}

func ptr[T any](v T) *T { return &v }

func dbcFor(h *harness) dbctx.Context { return dbctx.New(h.ctx) }
