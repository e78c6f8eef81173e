package controller

import (
	"errors"

	"mri_screening_backend/internal/model"
	"mri_screening_backend/internal/service"
	"mri_screening_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

type StartAttemptRequest struct {
	TestID  uint `json:"testId" binding:"required"`
	Consent bool `json:"consent"`
}

// Start godoc
// @Summary Start or resume a test attempt
// @Description Requires explicit proctoring consent; an unexpired active
// @Description attempt on the same test is resumed instead of duplicated
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body StartAttemptRequest true "Test id and consent"
// @Success 201 {object} util.Response{data=model.TestAttempt}
// @Failure 400 {object} util.Response "consent missing"
// @Failure 404 {object} util.Response "test not found"
// @Router /api/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.AttemptService.Start(claims.UserID, req.TestID, req.Consent,
		ctx.ClientIP(), ctx.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, util.ErrConsentRequired):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrTestNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, attempt)
}

// Questions godoc
// @Summary Question set for an attempt
// @Description Questions are served without correct answers or explanations
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Attempt ID"
// @Success 200 {object} util.Response{data=service.AttemptQuestionsView}
// @Failure 404 {object} util.Response
// @Failure 410 {object} util.Response "attempt expired"
// @Router /api/attempts/{id}/questions [get]
func (c *AttemptController) Questions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.AttemptService.Questions(util.MustParseUint(ctx.Param("id")), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SubmitAnswer godoc
// @Summary Submit one answer
// @Description Resubmitting the same question replaces the earlier answer
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Attempt ID"
// @Param   body body service.AnswerRequest true "Answer payload"
// @Success 200 {object} util.Response{data=service.AnswerResult}
// @Failure 400 {object} util.Response
// @Failure 410 {object} util.Response "attempt expired"
// @Router /api/attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.SubmitAnswer(util.MustParseUint(ctx.Param("id")), claims.UserID, req)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// TimeRemaining godoc
// @Summary Seconds left on the attempt clock
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Attempt ID"
// @Success 200 {object} util.Response{data=service.TimeRemainingView}
// @Router /api/attempts/{id}/time [get]
func (c *AttemptController) TimeRemaining(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.AttemptService.TimeRemaining(util.MustParseUint(ctx.Param("id")), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary Submit the attempt for scoring
// @Description Unanswered questions count as incorrect; a disqualified
// @Description submission scores zero and records the reason
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Attempt ID"
// @Param   body body service.SubmitRequest false "Disqualification info"
// @Success 200 {object} util.Response{data=model.TestAttempt}
// @Failure 409 {object} util.Response "already submitted"
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	attempt, err := c.AttemptService.Submit(util.MustParseUint(ctx.Param("id")), claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrAttemptSubmitted) {
			util.Conflict(ctx, err.Error())
			return
		}
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Result godoc
// @Summary Attempt result with per-question verdicts
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Attempt ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Router /api/attempts/{id}/result [get]
func (c *AttemptController) Result(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.AttemptService.Result(util.MustParseUint(ctx.Param("id")), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// List godoc
// @Summary List attempts for review
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   status query string false "Filter by status"
// @Param   flagged query bool false "Only plagiarism-flagged attempts"
// @Param   page query int false "Page"
// @Param   limit query int false "Page size"
// @Success 200 {object} util.Response{data=[]model.TestAttempt}
// @Router /api/admin/attempts [get]
func (c *AttemptController) List(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))
	status := model.AttemptStatus(ctx.Query("status"))
	flagged := ctx.Query("flagged") == "true"

	attempts, total, err := c.AttemptService.List(status, flagged, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

func (c *AttemptController) handleAttemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrAttemptExpired):
		util.Error(ctx, 410, err.Error())
	case errors.Is(err, util.ErrAttemptNotActive), errors.Is(err, util.ErrQuestionNotInSet):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
