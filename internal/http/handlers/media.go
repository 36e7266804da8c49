package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

var errBindingPair = errors.New("course_id and lesson_id must be given together")

type MediaHandler struct {
	log   *logger.Logger
	media services.MediaService
}

func NewMediaHandler(log *logger.Logger, media services.MediaService) *MediaHandler {
	return &MediaHandler{log: log.With("handler", "MediaHandler"), media: media}
}

// POST /api/media/upload/init
func (h *MediaHandler) InitUpload(c *gin.Context) {
	var req struct {
		Kind        string `json:"kind"`
		ContentType string `json:"content_type"`
		Size        int64  `json:"size"`
		Filename    string `json:"filename"`
		Title       string `json:"title"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.media.InitUpload(c.Request.Context(), services.InitUploadInput{
		Kind:                req.Kind,
		DeclaredContentType: req.ContentType,
		DeclaredSize:        req.Size,
		Filename:            req.Filename,
		Title:               req.Title,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/media/upload/finalize
func (h *MediaHandler) FinalizeUpload(c *gin.Context) {
	var req struct {
		ObjectKey       string     `json:"object_key"`
		Size            int64      `json:"size"`
		ContentType     string     `json:"content_type"`
		Kind            string     `json:"kind"`
		Title           string     `json:"title"`
		DurationSeconds *int       `json:"duration_seconds"`
		CourseID        *uuid.UUID `json:"course_id"`
		SectionID       *uuid.UUID `json:"section_id"`
		LessonID        *uuid.UUID `json:"lesson_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := services.FinalizeUploadInput{
		ObjectKey:           req.ObjectKey,
		DeclaredSize:        req.Size,
		DeclaredContentType: req.ContentType,
		Kind:                req.Kind,
		Title:               req.Title,
		DurationSeconds:     req.DurationSeconds,
	}
	if req.CourseID != nil || req.LessonID != nil {
		if req.CourseID == nil || req.LessonID == nil {
			response.RespondError(c, http.StatusBadRequest, "validation", errBindingPair)
			return
		}
		in.Binding = &domainagg.LessonBinding{CourseID: *req.CourseID, SectionID: req.SectionID, LessonID: *req.LessonID}
	}
	res, err := h.media.FinalizeUpload(c.Request.Context(), in)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, res.Created, gin.H{
		"asset":  res.Asset,
		"lesson": res.Lesson,
		"state":  res.State,
	})
}

// GET /api/media/:id/signed
func (h *MediaHandler) SignedDownload(c *gin.Context) {
	assetID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	signed, err := h.media.SignedDownload(c.Request.Context(), assetID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, signed)
}

// GET /api/instructor/media
func (h *MediaHandler) ListMine(c *gin.Context) {
	assets, err := h.media.ListOwnerAssets(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assets": assets})
}
