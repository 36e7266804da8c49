package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type CompanyHandler struct {
	companies services.CompanyService
}

func NewCompanyHandler(companies services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// POST /api/company/assignments
func (h *CompanyHandler) AssignCourse(c *gin.Context) {
	var req services.AssignCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.companies.AssignCourse(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, res.EnrollmentsCreated > 0, gin.H{
		"assignment":          res.Assignment,
		"enrollments_created": res.EnrollmentsCreated,
		"already_enrolled":    res.AlreadyEnrolled,
		"seats_consumed":      res.SeatsConsumed,
	})
}

// GET /api/company/members?company_id=
func (h *CompanyHandler) ListMembers(c *gin.Context) {
	companyID, ok := optionalUUIDQuery(c, "company_id")
	if !ok {
		return
	}
	members, err := h.companies.ListMembers(c.Request.Context(), companyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"members": members})
}

// GET /api/company/seats?company_id=
func (h *CompanyHandler) SeatSummary(c *gin.Context) {
	companyID, ok := optionalUUIDQuery(c, "company_id")
	if !ok {
		return
	}
	summary, err := h.companies.SeatSummary(c.Request.Context(), companyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, summary)
}

// POST /api/company/invitations
func (h *CompanyHandler) Invite(c *gin.Context) {
	var req services.InviteRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.companies.Invite(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, !res.Rotated, gin.H{
		"invitation": res.Invitation,
		"rotated":    res.Rotated,
	})
}

// GET /api/company/invitations?company_id=
func (h *CompanyHandler) PendingInvitations(c *gin.Context) {
	companyID, ok := optionalUUIDQuery(c, "company_id")
	if !ok {
		return
	}
	invitations, err := h.companies.PendingInvitations(c.Request.Context(), companyID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"invitations": invitations})
}

// POST /api/invitations/:token/accept
func (h *CompanyHandler) AcceptInvitation(c *gin.Context) {
	token, ok := uuidParam(c, "token")
	if !ok {
		return
	}
	res, err := h.companies.AcceptInvitation(c.Request.Context(), token)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, res.Joined, gin.H{
		"member": res.Member,
		"joined": res.Joined,
	})
}
