package controller

import (
	"errors"

	"mri_screening_backend/internal/service"
	"mri_screening_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// Create godoc
// @Summary Create a question
// @Tags admin-questions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.QuestionRequest true "Question definition"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /api/admin/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Create(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, question)
}

// Update godoc
// @Summary Update a question
// @Tags admin-questions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Question ID"
// @Param   body body service.QuestionRequest true "Question definition"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Update(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, question)
}

// Get godoc
// @Summary Question detail
// @Tags admin-questions
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Question ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	question, err := c.QuestionService.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, question)
}

// Delete godoc
// @Summary Delete a question
// @Tags admin-questions
// @Security BearerAuth
// @Param   id path int true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	if err := c.QuestionService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// List godoc
// @Summary List questions
// @Tags admin-questions
// @Produce  json
// @Security BearerAuth
// @Param   topicId query int false "Filter by topic"
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))
	topicID := uint(0)
	if v := ctx.Query("topicId"); v != "" {
		topicID = util.MustParseUint(v)
	}

	questions, total, err := c.QuestionService.List(topicID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: questions, Total: total, Page: page, Limit: limit})
}

// CreateTopic godoc
// @Summary Create a question topic
// @Tags admin-questions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.TopicRequest true "Topic definition"
// @Success 201 {object} util.Response{data=model.QuestionTopic}
// @Router /api/admin/topics [post]
func (c *QuestionController) CreateTopic(ctx *gin.Context) {
	var req service.TopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.QuestionService.CreateTopic(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, topic)
}

// UpdateTopic godoc
// @Summary Update a question topic
// @Tags admin-questions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Topic ID"
// @Param   body body service.TopicRequest true "Topic definition"
// @Success 200 {object} util.Response{data=model.QuestionTopic}
// @Router /api/admin/topics/{id} [put]
func (c *QuestionController) UpdateTopic(ctx *gin.Context) {
	var req service.TopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.QuestionService.UpdateTopic(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, topic)
}

// DeleteTopic godoc
// @Summary Delete a question topic
// @Tags admin-questions
// @Security BearerAuth
// @Param   id path int true "Topic ID"
// @Success 200 {object} util.Response
// @Router /api/admin/topics/{id} [delete]
func (c *QuestionController) DeleteTopic(ctx *gin.Context) {
	if err := c.QuestionService.DeleteTopic(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListTopics godoc
// @Summary List topics of a category
// @Tags admin-questions
// @Produce  json
// @Security BearerAuth
// @Param   categoryId query int true "Category ID"
// @Success 200 {object} util.Response{data=[]model.QuestionTopic}
// @Router /api/admin/topics [get]
func (c *QuestionController) ListTopics(ctx *gin.Context) {
	topics, err := c.QuestionService.ListTopics(util.MustParseUint(ctx.Query("categoryId")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, topics)
}

// ListCategories godoc
// @Summary List test categories
// @Tags categories
// @Produce  json
// @Param   all query bool false "Include inactive categories"
// @Success 200 {object} util.Response{data=[]model.TestCategory}
// @Router /api/categories [get]
func (c *QuestionController) ListCategories(ctx *gin.Context) {
	categories, err := c.QuestionService.ListCategories(ctx.Query("all") == "true")
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// CreateCategory godoc
// @Summary Create a test category
// @Tags admin-questions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CategoryRequest true "Category definition"
// @Success 201 {object} util.Response{data=model.TestCategory}
// @Router /api/admin/categories [post]
func (c *QuestionController) CreateCategory(ctx *gin.Context) {
	var req service.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.QuestionService.CreateCategory(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, category)
}

// UpdateCategory godoc
// @Summary Update a test category
// @Tags admin-questions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Category ID"
// @Param   body body service.CategoryRequest true "Category definition"
// @Success 200 {object} util.Response{data=model.TestCategory}
// @Router /api/admin/categories/{id} [put]
func (c *QuestionController) UpdateCategory(ctx *gin.Context) {
	var req service.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.QuestionService.UpdateCategory(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, category)
}
