package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type DashboardHandler struct {
	dashboard services.DashboardService
}

func NewDashboardHandler(dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GET /api/learner/progress
func (h *DashboardHandler) LearnerProgress(c *gin.Context) {
	courses, err := h.dashboard.LearnerProgress(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/learner/kpis
func (h *DashboardHandler) LearnerKPIs(c *gin.Context) {
	kpis, err := h.dashboard.LearnerKPIs(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, kpis)
}

// GET /api/instructor/kpis
func (h *DashboardHandler) InstructorKPIs(c *gin.Context) {
	kpis, err := h.dashboard.InstructorKPIs(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, kpis)
}
