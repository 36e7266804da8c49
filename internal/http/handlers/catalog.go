package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type CatalogHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:     log.With("handler", "CatalogHandler"),
		catalog: catalog,
	}
}

// GET /api/courses
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	categoryID, ok := optionalUUIDQuery(c, "category_id")
	if !ok {
		return
	}
	courses, err := h.catalog.ListPublishedCourses(c.Request.Context(), services.CourseQuery{
		Query:       c.Query("q"),
		CategoryID:  categoryID,
		CourseType:  c.Query("course_type"),
		PricingType: c.Query("pricing_type"),
		Limit:       intQuery(c, "limit", 0),
		Offset:      intQuery(c, "offset", 0),
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.catalog.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": categories})
}

// POST /api/admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, true, gin.H{"category": category})
}

// GET /api/instructor/courses
func (h *CatalogHandler) MyCourses(c *gin.Context) {
	courses, err := h.catalog.MyCourses(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

type courseRequest struct {
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	CourseType  string     `json:"course_type"`
	PricingType string     `json:"pricing_type"`
	PriceMinor  int64      `json:"price_minor"`
	Currency    string     `json:"currency"`
	CompanyOnly bool       `json:"company_only"`
	CompanyID   *uuid.UUID `json:"company_id"`
}

// POST /api/instructor/courses
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req courseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), services.CourseInput{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		CourseType:  req.CourseType,
		PricingType: req.PricingType,
		PriceMinor:  req.PriceMinor,
		Currency:    req.Currency,
		CompanyOnly: req.CompanyOnly,
		CompanyID:   req.CompanyID,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, true, gin.H{"course": course})
}

// PATCH /api/instructor/courses/:id
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       *string    `json:"title"`
		Subtitle    *string    `json:"subtitle"`
		Description *string    `json:"description"`
		CategoryID  *uuid.UUID `json:"category_id"`
		CourseType  *string    `json:"course_type"`
		PricingType *string    `json:"pricing_type"`
		PriceMinor  *int64     `json:"price_minor"`
		Currency    *string    `json:"currency"`
	}
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.catalog.UpdateCourse(c.Request.Context(), courseID, services.CoursePatch{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		CourseType:  req.CourseType,
		PricingType: req.PricingType,
		PriceMinor:  req.PriceMinor,
		Currency:    req.Currency,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// POST /api/instructor/courses/:id/publish
func (h *CatalogHandler) PublishCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	course, err := h.catalog.PublishCourse(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// POST /api/instructor/courses/:id/archive
func (h *CatalogHandler) ArchiveCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	course, err := h.catalog.ArchiveCourse(c.Request.Context(), courseID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// POST /api/instructor/courses/:id/sections
func (h *CatalogHandler) CreateSection(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.catalog.CreateSection(c.Request.Context(), courseID, services.SectionInput{Title: req.Title})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, true, gin.H{"section": section})
}

// POST /api/instructor/courses/:id/sections/:section_id/lessons
func (h *CatalogHandler) CreateLesson(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sectionID, ok := uuidParam(c, "section_id")
	if !ok {
		return
	}
	var req struct {
		Title        string     `json:"title"`
		LessonType   string     `json:"lesson_type"`
		IsPreview    bool       `json:"is_preview"`
		DurationSec  int        `json:"duration_sec"`
		Content      string     `json:"content"`
		VideoURL     string     `json:"video_url"`
		MediaAssetID *uuid.UUID `json:"media_asset_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := h.catalog.CreateLesson(c.Request.Context(), courseID, sectionID, services.LessonInput{
		Title:        req.Title,
		LessonType:   req.LessonType,
		IsPreview:    req.IsPreview,
		DurationSec:  req.DurationSec,
		Content:      req.Content,
		VideoURL:     req.VideoURL,
		MediaAssetID: req.MediaAssetID,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, true, gin.H{"lesson": lesson})
}

// PATCH /api/instructor/courses/:id/sections/:section_id
func (h *CatalogHandler) UpdateSection(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sectionID, ok := uuidParam(c, "section_id")
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.catalog.UpdateSection(c.Request.Context(), courseID, sectionID, services.SectionInput{Title: req.Title})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"section": section})
}

// DELETE /api/instructor/courses/:id/sections/:section_id
func (h *CatalogHandler) DeleteSection(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sectionID, ok := uuidParam(c, "section_id")
	if !ok {
		return
	}
	res, err := h.catalog.DeleteSection(c.Request.Context(), courseID, sectionID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// PATCH /api/instructor/courses/:id/sections/:section_id/lessons/:lesson_id
func (h *CatalogHandler) UpdateLesson(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sectionID, ok := uuidParam(c, "section_id")
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "lesson_id")
	if !ok {
		return
	}
	var req struct {
		Title        *string    `json:"title"`
		LessonType   *string    `json:"lesson_type"`
		IsPreview    *bool      `json:"is_preview"`
		DurationSec  *int       `json:"duration_sec"`
		Content      *string    `json:"content"`
		VideoURL     *string    `json:"video_url"`
		MediaAssetID *uuid.UUID `json:"media_asset_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := h.catalog.UpdateLesson(c.Request.Context(), courseID, sectionID, lessonID, services.LessonPatch{
		Title:        req.Title,
		LessonType:   req.LessonType,
		IsPreview:    req.IsPreview,
		DurationSec:  req.DurationSec,
		Content:      req.Content,
		VideoURL:     req.VideoURL,
		MediaAssetID: req.MediaAssetID,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": lesson})
}

// DELETE /api/instructor/courses/:id/sections/:section_id/lessons/:lesson_id
func (h *CatalogHandler) DeleteLesson(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sectionID, ok := uuidParam(c, "section_id")
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "lesson_id")
	if !ok {
		return
	}
	res, err := h.catalog.DeleteLesson(c.Request.Context(), courseID, sectionID, lessonID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, res)
}
