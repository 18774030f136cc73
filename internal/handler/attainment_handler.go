package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/obe-attainment-api/internal/attainment"
	"github.com/noah-isme/obe-attainment-api/internal/dto"
	"github.com/noah-isme/obe-attainment-api/internal/middleware"
	"github.com/noah-isme/obe-attainment-api/internal/models"
	"github.com/noah-isme/obe-attainment-api/internal/service"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
	"github.com/noah-isme/obe-attainment-api/pkg/export"
	"github.com/noah-isme/obe-attainment-api/pkg/response"
)

type attainmentService interface {
	CalculateAllCourseCOAttainments(ctx context.Context, courseID, sectionID string, policy attainment.Policy) (*models.CourseAttainmentReport, error)
	CalculateAllPOAttainments(ctx context.Context, programID string, policy attainment.Policy) (*models.ProgramAttainmentReport, error)
	GenerateCourseAttainmentReport(ctx context.Context, courseID, sectionID string, policy attainment.Policy) (*models.CourseAttainmentDetailReport, error)
	PurgeCache(ctx context.Context, courseOrProgramID string) error
}

type attainmentExporter interface {
	ExportCourse(ctx context.Context, courseID, sectionID string, policy attainment.Policy, format export.Format) (*service.ExportFile, error)
	ExportProgram(ctx context.Context, programID string, policy attainment.Policy, format export.Format) (*service.ExportFile, error)
}

type policyResolver interface {
	Defaults() attainment.Policy
	Resolve(overrides dto.PolicyOverrides) (attainment.Policy, error)
}

// AttainmentHandler exposes course and program outcome attainment.
type AttainmentHandler struct {
	service  attainmentService
	exporter attainmentExporter
	policies policyResolver
	logger   *zap.Logger
}

// NewAttainmentHandler constructs the handler.
func NewAttainmentHandler(service attainmentService, exporter attainmentExporter, policies policyResolver, logger *zap.Logger) *AttainmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttainmentHandler{service: service, exporter: exporter, policies: policies, logger: logger}
}

// CourseAttainment godoc
// @Summary CO attainment of a course
// @Description Resolves every course outcome of the course. Without sectionId all sections are aggregated.
// @Tags Attainment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param sectionId query string false "Section ID"
// @Param targetPercent query number false "Per question target percent"
// @Param thresholds query string false "Level cut points, e.g. 50,60,70"
// @Param internalWeight query number false "Internal assessment weight"
// @Param externalWeight query number false "External assessment weight"
// @Success 200 {object} response.Envelope{data=models.CourseAttainmentReport}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/attainment [get]
func (h *AttainmentHandler) CourseAttainment(c *gin.Context) {
	courseID, query, policy, ok := h.courseRequest(c)
	if !ok {
		return
	}
	start := time.Now()
	report, err := h.service.CalculateAllCourseCOAttainments(c.Request.Context(), courseID, query.SectionID, policy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, resultMeta(policy, start))
}

// CourseReport godoc
// @Summary Detailed course attainment report
// @Description CO attainment plus per-assessment and per-question statistics.
// @Tags Attainment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param sectionId query string false "Section ID"
// @Param targetPercent query number false "Per question target percent"
// @Param thresholds query string false "Level cut points, e.g. 50,60,70"
// @Param internalWeight query number false "Internal assessment weight"
// @Param externalWeight query number false "External assessment weight"
// @Success 200 {object} response.Envelope{data=models.CourseAttainmentDetailReport}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/attainment/report [get]
func (h *AttainmentHandler) CourseReport(c *gin.Context) {
	courseID, query, policy, ok := h.courseRequest(c)
	if !ok {
		return
	}
	start := time.Now()
	report, err := h.service.GenerateCourseAttainmentReport(c.Request.Context(), courseID, query.SectionID, policy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, resultMeta(policy, start))
}

// CourseExport godoc
// @Summary Export course CO attainment
// @Tags Attainment
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param sectionId query string false "Section ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/attainment/export [get]
func (h *AttainmentHandler) CourseExport(c *gin.Context) {
	courseID, query, policy, ok := h.courseRequest(c)
	if !ok {
		return
	}
	format, ok := exportFormat(c)
	if !ok {
		return
	}
	file, err := h.exporter.ExportCourse(c.Request.Context(), courseID, query.SectionID, policy, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// ProgramAttainment godoc
// @Summary PO attainment of a program
// @Description Resolves every program outcome from the CO attainment of all program courses.
// @Tags Attainment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param targetPercent query number false "Per question target percent"
// @Param thresholds query string false "Level cut points, e.g. 50,60,70"
// @Param internalWeight query number false "Internal assessment weight"
// @Param externalWeight query number false "External assessment weight"
// @Success 200 {object} response.Envelope{data=models.ProgramAttainmentReport}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id}/attainment [get]
func (h *AttainmentHandler) ProgramAttainment(c *gin.Context) {
	programID, policy, ok := h.programRequest(c)
	if !ok {
		return
	}
	start := time.Now()
	report, err := h.service.CalculateAllPOAttainments(c.Request.Context(), programID, policy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, resultMeta(policy, start))
}

// ProgramExport godoc
// @Summary Export program PO attainment
// @Tags Attainment
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id}/attainment/export [get]
func (h *AttainmentHandler) ProgramExport(c *gin.Context) {
	programID, policy, ok := h.programRequest(c)
	if !ok {
		return
	}
	format, ok := exportFormat(c)
	if !ok {
		return
	}
	file, err := h.exporter.ExportProgram(c.Request.Context(), programID, policy, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// Policy godoc
// @Summary Configured attainment policy
// @Tags Attainment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=attainment.Policy}
// @Router /attainment/policy [get]
func (h *AttainmentHandler) Policy(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.policies.Defaults(), nil)
}

// PurgeCache godoc
// @Summary Purge cached attainment reports
// @Tags Attainment
// @Security BearerAuth
// @Param id query string false "Course or program ID; all reports when omitted"
// @Success 204
// @Router /attainment/cache [delete]
func (h *AttainmentHandler) PurgeCache(c *gin.Context) {
	var query dto.PurgeCacheQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	id := strings.TrimSpace(query.ID)
	if err := h.service.PurgeCache(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	fields := []zap.Field{zap.String("id", id)}
	if claims := middleware.ClaimsFromContext(c); claims != nil {
		fields = append(fields, zap.String("user_id", claims.UserID))
	}
	h.logger.Info("attainment cache purged", fields...)
	response.NoContent(c)
}

func (h *AttainmentHandler) courseRequest(c *gin.Context) (string, dto.CourseAttainmentQuery, attainment.Policy, bool) {
	var query dto.CourseAttainmentQuery
	courseID := strings.TrimSpace(c.Param("id"))
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course id is required"))
		return "", query, attainment.Policy{}, false
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return "", query, attainment.Policy{}, false
	}
	query.SectionID = strings.TrimSpace(query.SectionID)
	policy, err := h.policies.Resolve(query.PolicyOverrides)
	if err != nil {
		response.Error(c, err)
		return "", query, attainment.Policy{}, false
	}
	return courseID, query, policy, true
}

func (h *AttainmentHandler) programRequest(c *gin.Context) (string, attainment.Policy, bool) {
	programID := strings.TrimSpace(c.Param("id"))
	if programID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "program id is required"))
		return "", attainment.Policy{}, false
	}
	var query dto.ProgramAttainmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return "", attainment.Policy{}, false
	}
	policy, err := h.policies.Resolve(query.PolicyOverrides)
	if err != nil {
		response.Error(c, err)
		return "", attainment.Policy{}, false
	}
	return programID, policy, true
}

func exportFormat(c *gin.Context) (export.Format, bool) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return "", false
	}
	return format, true
}

func resultMeta(policy attainment.Policy, start time.Time) map[string]interface{} {
	return map[string]interface{}{
		"policy":             policy,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
}
