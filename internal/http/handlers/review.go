package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type ReviewHandler struct {
	reviews services.ReviewService
}

func NewReviewHandler(reviews services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// POST /api/learner/courses/:id/review
func (h *ReviewHandler) Submit(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.SubmitReview(c.Request.Context(), courseID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"review": review})
}

// GET /api/courses/:id/reviews
func (h *ReviewHandler) ListForCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.reviews.CourseReviews(c.Request.Context(), courseID, intQuery(c, "limit", 0), intQuery(c, "offset", 0))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/instructor/reviews
func (h *ReviewHandler) ListMine(c *gin.Context) {
	out, err := h.reviews.InstructorReviews(c.Request.Context(), intQuery(c, "limit", 0), intQuery(c, "offset", 0))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, out)
}
