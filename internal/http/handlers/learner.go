package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

// LearnerHandler serves the enrolled learner's side: enrollments, progress
// and certificates.
type LearnerHandler struct {
	log          *logger.Logger
	enrollments  services.EnrollmentService
	progress     services.ProgressService
	certificates services.CertificationService
}

func NewLearnerHandler(
	log *logger.Logger,
	enrollments services.EnrollmentService,
	progress services.ProgressService,
	certificates services.CertificationService,
) *LearnerHandler {
	return &LearnerHandler{
		log:          log.With("handler", "LearnerHandler"),
		enrollments:  enrollments,
		progress:     progress,
		certificates: certificates,
	}
}

// GET /api/learner/enrollments
func (h *LearnerHandler) ListEnrollments(c *gin.Context) {
	views, err := h.enrollments.ListForUser(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollments": views})
}

// POST /api/learner/courses/:id/enroll
func (h *LearnerHandler) Enroll(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	enrollment, created, err := h.enrollments.Enroll(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, created, gin.H{"enrollment": enrollment})
}

// POST /api/learner/courses/:id/cancel
func (h *LearnerHandler) Cancel(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	enrollment, err := h.enrollments.Cancel(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": enrollment})
}

// GET /api/learner/courses/:id/outline
func (h *LearnerHandler) Outline(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	outline, err := h.progress.CourseOutlineWithProgress(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, outline)
}

// POST /api/learner/courses/:id/continue
func (h *LearnerHandler) Continue(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.enrollments.ContinueCourse(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/learner/courses/:id/set-current
func (h *LearnerHandler) SetCurrent(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		LessonID uuid.UUID `json:"lesson_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.SetCurrentLesson(c.Request.Context(), courseID, req.LessonID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": enrollment})
}

// GET /api/learner/courses/:id/lessons/:lesson_id/state
func (h *LearnerHandler) LessonState(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "lesson_id")
	if !ok {
		return
	}
	state, err := h.progress.LessonState(c.Request.Context(), courseID, lessonID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, state)
}

// POST /api/learner/courses/:id/lessons/:lesson_id/progress
func (h *LearnerHandler) UpdateProgress(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "lesson_id")
	if !ok {
		return
	}
	var req struct {
		Percent         *int `json:"percent"`
		LastPositionSec *int `json:"last_position_sec"`
		Completed       bool `json:"completed"`
	}
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.progress.UpdateProgress(c.Request.Context(), courseID, lessonID, services.ProgressUpdate{
		Percent:         req.Percent,
		LastPositionSec: req.LastPositionSec,
		MarkCompleted:   req.Completed,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, state)
}

// POST /api/learner/courses/:id/certificate
func (h *LearnerHandler) IssueCertificate(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.certificates.IssueForCaller(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, res.Created, gin.H{
		"certificate": res.Certificate,
		"qualified":   res.Qualified,
	})
}

// GET /api/learner/courses/:id/certificate
func (h *LearnerHandler) GetCertificate(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	cert, err := h.certificates.GetCertificate(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"certificate": cert})
}

// GET /api/learner/courses/:id/certificate/download
func (h *LearnerHandler) DownloadCertificate(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	signed, err := h.certificates.SignedCertificateDownload(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, signed)
}

// GET /api/certificates/verify/:serial
func (h *LearnerHandler) VerifyCertificate(c *gin.Context) {
	res, err := h.certificates.VerifyBySerial(c.Request.Context(), c.Param("serial"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, res)
}
