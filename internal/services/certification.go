package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/certdoc"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

type CertificateResult struct {
	Certificate *types.IssuedCertificate `json:"certificate,omitempty"`
	Created     bool                     `json:"created"`
	Qualified   bool                     `json:"qualified"`
}

type CertificateVerification struct {
	Serial       string    `json:"serial"`
	LearnerName  string    `json:"learner_name"`
	CourseTitle  string    `json:"course_title"`
	ScorePercent int       `json:"score_percent"`
	IssuedAt     time.Time `json:"issued_at"`
}

type CertificationService interface {
	CertificateIssuer
	IssueForCaller(ctx context.Context, courseID uuid.UUID) (*CertificateResult, error)
	GetCertificate(ctx context.Context, courseID uuid.UUID) (*types.IssuedCertificate, error)
	VerifyBySerial(ctx context.Context, serial string) (*CertificateVerification, error)
	SignedCertificateDownload(ctx context.Context, courseID uuid.UUID) (*SignedURL, error)
}

type certificationService struct {
	log          *logger.Logger
	users        repos.UserRepo
	courses      repos.CourseRepo
	templates    repos.CertificateTemplateRepo
	certificates repos.IssuedCertificateRepo
	agg          domainagg.CertificateAggregate
	renderer     certdoc.Renderer
	storage      objectstore.Gateway
	now          func() time.Time
}

func NewCertificationService(
	log *logger.Logger,
	users repos.UserRepo,
	courses repos.CourseRepo,
	templates repos.CertificateTemplateRepo,
	certificates repos.IssuedCertificateRepo,
	agg domainagg.CertificateAggregate,
	renderer certdoc.Renderer,
	storage objectstore.Gateway,
) CertificationService {
	return &certificationService{
		log:          log.With("service", "CertificationService"),
		users:        users,
		courses:      courses,
		templates:    templates,
		certificates: certificates,
		agg:          agg,
		renderer:     renderer,
		storage:      storage,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func CertificateDocumentKey(userID uuid.UUID, serial string) string {
	return "certificates/" + userID.String() + "/" + serial + ".png"
}

func (s *certificationService) IssueForCaller(ctx context.Context, courseID uuid.UUID) (*CertificateResult, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.IssueIfQualified(ctx, rd.UserID, courseID)
}

// IssueIfQualified returns (nil certificate, Qualified=false) when the user
// has no passing final attempt yet. The document is rendered and uploaded
// after the certificate row commits, by any call that finds it missing, so
// a failed upload is repaired by the next call.
func (s *certificationService) IssueIfQualified(ctx context.Context, userID, courseID uuid.UUID) (*CertificateResult, error) {
	const op = "Certification.Issue"
	dbc := dbctx.New(ctx)
	user, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if user == nil {
		return nil, domainagg.NotFound(op, "user not found")
	}
	course, err := s.courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if course == nil {
		return nil, domainagg.NotFound(op, "course not found")
	}

	res, err := s.agg.IssueIfQualified(ctx, domainagg.IssueCertificateInput{UserID: userID, CourseID: courseID})
	if err != nil {
		observability.Current().IncCertificate("error")
		return nil, err
	}
	switch {
	case res.Created:
		observability.Current().IncCertificate("issued")
		s.log.Info("Certificate issued", "serial", res.Certificate.Serial, "user_id", userID, "course_id", courseID)
	case res.Certificate != nil:
		observability.Current().IncCertificate("existing")
	default:
		observability.Current().IncCertificate("not_qualified")
	}
	if res.Certificate != nil && res.Certificate.DocumentKey == "" {
		if err := s.storeDocument(ctx, user, course, res.Certificate); err != nil {
			observability.Current().IncCertificate("document_failed")
			s.log.Warn("Certificate document not stored", "serial", res.Certificate.Serial, "error", err)
		}
	}
	return &CertificateResult{Certificate: res.Certificate, Created: res.Created, Qualified: res.Qualified}, nil
}

// storeDocument renders and uploads the document, then attaches its key.
// The object is removed again when the key cannot be attached.
func (s *certificationService) storeDocument(ctx context.Context, user *types.User, course *types.Course, cert *types.IssuedCertificate) error {
	if s.renderer == nil || s.storage == nil {
		return nil
	}
	data := certdoc.CertificateData{
		LearnerName:  user.DisplayName(),
		CourseTitle:  course.Title,
		Serial:       cert.Serial,
		ScorePercent: cert.ScorePercent,
		IssuedAt:     cert.IssuedAt,
	}
	tpl, err := s.templates.GetDefault(dbctx.New(ctx))
	if err != nil {
		return err
	}
	if tpl != nil {
		data.SignatureName = tpl.SignatureName
		data.SignatureTitle = tpl.SignatureTitle
	}
	png, err := s.renderer.Render(ctx, data)
	if err != nil {
		return fmt.Errorf("render certificate %s: %w", cert.Serial, err)
	}
	key := CertificateDocumentKey(cert.UserID, cert.Serial)
	if err := s.storage.Put(ctx, objectstore.CategoryCertificate, key, "image/png", bytes.NewReader(png), int64(len(png))); err != nil {
		return fmt.Errorf("upload certificate document: %w", err)
	}
	attached, err := s.agg.AttachDocument(ctx, domainagg.AttachDocumentInput{CertificateID: cert.ID, Key: key})
	if err != nil {
		if derr := s.storage.Delete(ctx, objectstore.CategoryCertificate, key); derr != nil {
			s.log.Warn("Orphaned certificate document", "key", key, "error", derr)
		}
		return err
	}
	cert.DocumentKey = attached.Key
	return nil
}

func (s *certificationService) GetCertificate(ctx context.Context, courseID uuid.UUID) (*types.IssuedCertificate, error) {
	const op = "Certification.Get"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	cert, err := s.certificates.GetByUserAndCourse(dbctx.New(ctx), rd.UserID, courseID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if cert == nil {
		return nil, domainagg.NotFound(op, "no certificate for this course")
	}
	return cert, nil
}

func (s *certificationService) VerifyBySerial(ctx context.Context, serial string) (*CertificateVerification, error) {
	const op = "Certification.Verify"
	serial = strings.ToUpper(strings.TrimSpace(serial))
	if serial == "" {
		return nil, domainagg.Invalid(op, "serial is required")
	}
	dbc := dbctx.New(ctx)
	cert, err := s.certificates.GetBySerial(dbc, serial)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if cert == nil {
		return nil, domainagg.NotFound(op, "unknown certificate serial")
	}
	out := &CertificateVerification{Serial: cert.Serial, ScorePercent: cert.ScorePercent, IssuedAt: cert.IssuedAt}
	if u, err := s.users.GetByID(dbc, cert.UserID); err == nil && u != nil {
		out.LearnerName = u.DisplayName()
	}
	if c, err := s.courses.GetByID(dbc, cert.CourseID); err == nil && c != nil {
		out.CourseTitle = c.Title
	}
	return out, nil
}

func (s *certificationService) SignedCertificateDownload(ctx context.Context, courseID uuid.UUID) (*SignedURL, error) {
	const op = "Certification.Download"
	cert, err := s.GetCertificate(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if cert.DocumentKey == "" {
		return nil, domainagg.NewError(domainagg.CodeObjectNotFound, op, "certificate document not available", nil)
	}
	url, err := s.storage.PresignGet(ctx, objectstore.CategoryCertificate, cert.DocumentKey, DownloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign certificate: %w", err)
	}
	return &SignedURL{URL: url, ExpiresAt: s.now().Add(DownloadURLTTL)}, nil
}
