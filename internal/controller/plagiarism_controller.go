package controller

import (
	"mri_screening_backend/internal/service"
	"mri_screening_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlagiarismController struct {
	PlagiarismService *service.PlagiarismService
}

func NewPlagiarismController(plagiarismService *service.PlagiarismService) *PlagiarismController {
	return &PlagiarismController{PlagiarismService: plagiarismService}
}

// Scan godoc
// @Summary Run a plagiarism scan
// @Description Compares completed attempt pairs per test; testId 0 or
// @Description omitted scans every test
// @Tags admin-plagiarism
// @Produce  json
// @Security BearerAuth
// @Param   testId query int false "Limit the scan to one test"
// @Success 200 {object} util.Response{data=service.ScanReport}
// @Router /api/admin/plagiarism/scan [post]
func (c *PlagiarismController) Scan(ctx *gin.Context) {
	testID := uint(0)
	if v := ctx.Query("testId"); v != "" {
		testID = util.MustParseUint(v)
	}

	report, err := c.PlagiarismService.ScanTest(testID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// ListFlags godoc
// @Summary List plagiarism flags
// @Tags admin-plagiarism
// @Produce  json
// @Security BearerAuth
// @Param   reviewed query bool false "Filter by review state"
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/plagiarism/flags [get]
func (c *PlagiarismController) ListFlags(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	var reviewed *bool
	if v := ctx.Query("reviewed"); v != "" {
		b := v == "true"
		reviewed = &b
	}

	flags, total, err := c.PlagiarismService.ListFlags(reviewed, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: flags, Total: total, Page: page, Limit: limit})
}

// Review godoc
// @Summary Mark a plagiarism flag as reviewed
// @Tags admin-plagiarism
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Flag ID"
// @Param   body body service.ReviewRequest true "Review note"
// @Success 200 {object} util.Response{data=model.PlagiarismFlag}
// @Failure 404 {object} util.Response
// @Router /api/admin/plagiarism/flags/{id}/review [post]
func (c *PlagiarismController) Review(ctx *gin.Context) {
	var req service.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	flag, err := c.PlagiarismService.Review(util.MustParseUint(ctx.Param("id")), req.Note)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, flag)
}
