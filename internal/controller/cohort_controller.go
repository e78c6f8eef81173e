package controller

import (
	"errors"

	"mri_screening_backend/internal/service"
	"mri_screening_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CohortController struct {
	CohortService *service.CohortService
}

func NewCohortController(cohortService *service.CohortService) *CohortController {
	return &CohortController{CohortService: cohortService}
}

// Create godoc
// @Summary Create a cohort
// @Tags admin-cohorts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CohortRequest true "Cohort definition"
// @Success 201 {object} util.Response{data=model.Cohort}
// @Failure 400 {object} util.Response
// @Router /api/admin/cohorts [post]
func (c *CohortController) Create(ctx *gin.Context) {
	var req service.CohortRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cohort, err := c.CohortService.Create(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, cohort)
}

// Update godoc
// @Summary Update a cohort
// @Tags admin-cohorts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Cohort ID"
// @Param   body body service.CohortRequest true "Cohort definition"
// @Success 200 {object} util.Response{data=model.Cohort}
// @Failure 404 {object} util.Response
// @Router /api/admin/cohorts/{id} [put]
func (c *CohortController) Update(ctx *gin.Context) {
	var req service.CohortRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cohort, err := c.CohortService.Update(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrCohortNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, cohort)
}

// Get godoc
// @Summary Cohort detail
// @Tags admin-cohorts
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Cohort ID"
// @Success 200 {object} util.Response{data=model.Cohort}
// @Failure 404 {object} util.Response
// @Router /api/admin/cohorts/{id} [get]
func (c *CohortController) Get(ctx *gin.Context) {
	cohort, err := c.CohortService.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, cohort)
}

// List godoc
// @Summary List cohorts
// @Tags admin-cohorts
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/cohorts [get]
func (c *CohortController) List(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))
	cohorts, total, err := c.CohortService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: cohorts, Total: total, Page: page, Limit: limit})
}

// Delete godoc
// @Summary Delete a cohort
// @Tags admin-cohorts
// @Security BearerAuth
// @Param   id path int true "Cohort ID"
// @Success 200 {object} util.Response
// @Router /api/admin/cohorts/{id} [delete]
func (c *CohortController) Delete(ctx *gin.Context) {
	if err := c.CohortService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type AddMemberRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// AddMember godoc
// @Summary Add a candidate to a cohort
// @Tags admin-cohorts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Cohort ID"
// @Param   body body AddMemberRequest true "User id"
// @Success 201 {object} util.Response{data=model.CohortMembership}
// @Failure 404 {object} util.Response
// @Router /api/admin/cohorts/{id}/members [post]
func (c *CohortController) AddMember(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	membership, err := c.CohortService.AddMember(util.MustParseUint(ctx.Param("id")), req.UserID, claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrCohortNotFound) || errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, membership)
}

// RemoveMember godoc
// @Summary Remove a candidate from a cohort
// @Tags admin-cohorts
// @Security BearerAuth
// @Param   id path int true "Cohort ID"
// @Param   userId path int true "User ID"
// @Success 200 {object} util.Response
// @Router /api/admin/cohorts/{id}/members/{userId} [delete]
func (c *CohortController) RemoveMember(ctx *gin.Context) {
	err := c.CohortService.RemoveMember(util.MustParseUint(ctx.Param("id")), util.MustParseUint(ctx.Param("userId")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListMembers godoc
// @Summary Cohort members
// @Tags admin-cohorts
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Cohort ID"
// @Success 200 {object} util.Response{data=[]model.CohortMembership}
// @Failure 404 {object} util.Response
// @Router /api/admin/cohorts/{id}/members [get]
func (c *CohortController) ListMembers(ctx *gin.Context) {
	members, err := c.CohortService.ListMembers(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrCohortNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, members)
}

type BulkAssignRequest struct {
	TestID uint `json:"testId" binding:"required"`
}

// BulkAssignTest godoc
// @Summary Pre-create attempts for every cohort member
// @Description Members that already hold an active attempt on the test are
// @Description skipped
// @Tags admin-cohorts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Cohort ID"
// @Param   body body BulkAssignRequest true "Test id"
// @Success 200 {object} util.Response{data=service.BulkAssignReport}
// @Failure 404 {object} util.Response
// @Router /api/admin/cohorts/{id}/assign [post]
func (c *CohortController) BulkAssignTest(ctx *gin.Context) {
	var req BulkAssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	report, err := c.CohortService.BulkAssignTest(util.MustParseUint(ctx.Param("id")), req.TestID)
	if err != nil {
		if errors.Is(err, util.ErrCohortNotFound) || errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}
