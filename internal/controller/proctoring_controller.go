package controller

import (
	"errors"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/service"
	"mri_screening_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProctoringController struct {
	ProctoringService *service.ProctoringService
}

func NewProctoringController(proctoringService *service.ProctoringService) *ProctoringController {
	return &ProctoringController{ProctoringService: proctoringService}
}

// RecordEvent godoc
// @Summary Record a browser proctoring event
// @Description Critical events feed a sliding violation counter; crossing
// @Description the threshold flags the attempt for review
// @Tags proctoring
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Attempt ID"
// @Param   body body service.ProctoringEventRequest true "Event payload"
// @Success 201 {object} util.Response{data=service.ProctoringEventView}
// @Failure 400 {object} util.Response
// @Router /api/attempts/{id}/proctoring/events [post]
func (c *ProctoringController) RecordEvent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProctoringEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.ProctoringService.RecordEvent(ctx.Request.Context(),
		util.MustParseUint(ctx.Param("id")), claims.UserID, req)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// UploadSnapshot godoc
// @Summary Upload a webcam or screen snapshot
// @Description The image is downscaled and re-encoded as JPEG before storage
// @Tags proctoring
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Attempt ID"
// @Param   image formData file true "Snapshot image"
// @Param   eventType formData string true "webcam_snapshot or screen_snapshot"
// @Success 201 {object} util.Response{data=model.ProctoringEvent}
// @Failure 400 {object} util.Response
// @Router /api/attempts/{id}/proctoring/snapshots [post]
func (c *ProctoringController) UploadSnapshot(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	header, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image is required")
		return
	}
	if declared := header.Header.Get("Content-Type"); declared != "" && !util.IsImage(declared) {
		util.BadRequest(ctx, "snapshot must be an image")
		return
	}

	eventType := model.ProctoringEventType(ctx.PostForm("eventType"))
	if eventType == "" {
		eventType = model.EventWebcamSnapshot
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	event, err := c.ProctoringService.UploadSnapshot(ctx.Request.Context(),
		util.MustParseUint(ctx.Param("id")), claims.UserID, eventType, file)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	util.Created(ctx, event)
}

// ListEvents godoc
// @Summary Proctoring events for an attempt
// @Tags admin-proctoring
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Attempt ID"
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/attempts/{id}/proctoring/events [get]
func (c *ProctoringController) ListEvents(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))
	events, total, err := c.ProctoringService.ListEvents(util.MustParseUint(ctx.Param("id")), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: events, Total: total, Page: page, Limit: limit})
}

func (c *ProctoringController) handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrAttemptNotActive),
		errors.Is(err, util.ErrNoSnapshotImage),
		errors.Is(err, util.ErrUnsupportedFileType):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
