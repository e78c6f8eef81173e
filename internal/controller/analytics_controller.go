package controller

import (
	"errors"
	"fmt"

	"mri_screening_backend/internal/service"
	"mri_screening_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService     *service.AnalyticsService
	PsychometricsService *service.PsychometricsService
	ExportService        *service.ExportService
}

func NewAnalyticsController(
	analyticsService *service.AnalyticsService,
	psychometricsService *service.PsychometricsService,
	exportService *service.ExportService,
) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService:     analyticsService,
		PsychometricsService: psychometricsService,
		ExportService:        exportService,
	}
}

// CandidateDashboard godoc
// @Summary Candidate analytics dashboard
// @Description Scores, percentiles, skill gaps and stage readiness. A
// @Description percentile is omitted while its category pool is too small
// @Description to rank meaningfully
// @Tags analytics
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.CandidateDashboard}
// @Router /api/analytics/dashboard [get]
func (c *AnalyticsController) CandidateDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.AnalyticsService.CandidateDashboard(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// AdminDashboard godoc
// @Summary Recruiter overview dashboard
// @Tags admin-analytics
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.AdminDashboard}
// @Router /api/admin/analytics/dashboard [get]
func (c *AnalyticsController) AdminDashboard(ctx *gin.Context) {
	dashboard, err := c.AnalyticsService.AdminDashboard()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// Reliability godoc
// @Summary Test reliability report
// @Description Cronbach's alpha and per-item discrimination for one test
// @Tags admin-analytics
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Test ID"
// @Success 200 {object} util.Response{data=model.ReliabilityReport}
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response "not enough completed attempts"
// @Router /api/admin/analytics/tests/{id}/reliability [get]
func (c *AnalyticsController) Reliability(ctx *gin.Context) {
	report, err := c.PsychometricsService.Reliability(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTestNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotEnoughAttempts):
			util.Error(ctx, 422, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}

// Export godoc
// @Summary Export all results as an xlsx workbook
// @Tags admin-analytics
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /api/admin/analytics/export [get]
func (c *AnalyticsController) Export(ctx *gin.Context) {
	buf, filename, err := c.ExportService.AttemptsWorkbook()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
