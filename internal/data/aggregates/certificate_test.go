package aggregates_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/certification"
)

func TestIssueCertificateRequiresEnrollment(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.ctx, h.db, "noenroll@example.com")
	instr := testutil.SeedInstructor(t, h.ctx, h.db, "noenroll-i@example.com")
	course, _ := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 1)

	_, err := h.certificateAgg().IssueIfQualified(h.ctx, domainagg.IssueCertificateInput{UserID: learner.ID, CourseID: course.ID})
	wantCode(t, "not enrolled", err, domainagg.CodeNotEnrolled)
}

func TestIssueCertificateWithoutPassingAttempt(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.ctx, h.db, "np@example.com")
	instr := testutil.SeedInstructor(t, h.ctx, h.db, "np-i@example.com")
	course, _ := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 1)
	testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	agg := h.certificateAgg()

	res, err := agg.IssueIfQualified(h.ctx, domainagg.IssueCertificateInput{UserID: learner.ID, CourseID: course.ID})
	if err != nil || res.Certificate != nil || res.Qualified {
		t.Fatalf("no final quiz: err=%v got=%+v", err, res)
	}

	quiz, _, _ := testutil.SeedFinalQuiz(t, h.ctx, h.db, course.ID, 2)
	testutil.SeedAttempt(t, h.ctx, h.db, quiz.ID, learner.ID, 50, false)
	res, err = agg.IssueIfQualified(h.ctx, domainagg.IssueCertificateInput{UserID: learner.ID, CourseID: course.ID})
	if err != nil || res.Certificate != nil {
		t.Fatalf("failed attempt only: err=%v got=%+v", err, res)
	}
}

func TestIssueCertificateOnce(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.ctx, h.db, "cert@example.com")
	instr := testutil.SeedInstructor(t, h.ctx, h.db, "cert-i@example.com")
	course, _ := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 1)
	testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	quiz, _, _ := testutil.SeedFinalQuiz(t, h.ctx, h.db, course.ID, 2)
	testutil.SeedAttempt(t, h.ctx, h.db, quiz.ID, learner.ID, 80, true)
	testutil.SeedAttempt(t, h.ctx, h.db, quiz.ID, learner.ID, 95, true)
	tpl := testutil.SeedTemplate(t, h.ctx, h.db, "Classic")
	agg := h.certificateAgg()

	first, err := agg.IssueIfQualified(h.ctx, domainagg.IssueCertificateInput{UserID: learner.ID, CourseID: course.ID})
	if err != nil || !first.Created || first.Certificate == nil {
		t.Fatalf("first issue: err=%v got=%+v", err, first)
	}
	c := first.Certificate
	if c.ScorePercent != 95 || c.TemplateID == nil || *c.TemplateID != tpl.ID || len(c.Serial) != 16 {
		t.Fatalf("issued certificate: %+v", c)
	}
	if c.DocumentKey != "" {
		t.Fatalf("document key set inside issue: %q", c.DocumentKey)
	}

	second, err := agg.IssueIfQualified(h.ctx, domainagg.IssueCertificateInput{UserID: learner.ID, CourseID: course.ID})
	if err != nil || second.Created || second.Certificate.Serial != c.Serial {
		t.Fatalf("second issue: err=%v got=%+v", err, second)
	}
	if n := h.count(t, &certification.IssuedCertificate{}, "user_id = ?", learner.ID); n != 1 {
		t.Fatalf("certificate rows: want=1 got=%d", n)
	}
}

func TestAttachDocumentKeepsFirstKey(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.ctx, h.db, "attach@example.com")
	instr := testutil.SeedInstructor(t, h.ctx, h.db, "attach-i@example.com")
	course, _ := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 1)
	testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	quiz, _, _ := testutil.SeedFinalQuiz(t, h.ctx, h.db, course.ID, 1)
	testutil.SeedAttempt(t, h.ctx, h.db, quiz.ID, learner.ID, 100, true)
	agg := h.certificateAgg()

	issued, err := agg.IssueIfQualified(h.ctx, domainagg.IssueCertificateInput{UserID: learner.ID, CourseID: course.ID})
	if err != nil || issued.Certificate == nil {
		t.Fatalf("issue: err=%v got=%+v", err, issued)
	}
	id := issued.Certificate.ID

	first, err := agg.AttachDocument(h.ctx, domainagg.AttachDocumentInput{CertificateID: id, Key: "certificates/a.png"})
	if err != nil || !first.Attached || first.Key != "certificates/a.png" {
		t.Fatalf("first attach: err=%v got=%+v", err, first)
	}
	second, err := agg.AttachDocument(h.ctx, domainagg.AttachDocumentInput{CertificateID: id, Key: "certificates/b.png"})
	if err != nil || second.Attached || second.Key != "certificates/a.png" {
		t.Fatalf("second attach: want stored key kept err=%v got=%+v", err, second)
	}

	_, err = agg.AttachDocument(h.ctx, domainagg.AttachDocumentInput{CertificateID: uuid.New(), Key: "certificates/c.png"})
	wantCode(t, "unknown certificate", err, domainagg.CodeNotFound)
	_, err = agg.AttachDocument(h.ctx, domainagg.AttachDocumentInput{CertificateID: id})
	wantCode(t, "empty key", err, domainagg.CodeValidation)
}
