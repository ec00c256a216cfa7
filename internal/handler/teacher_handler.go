package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/service"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/response"
)

// TeacherHandler handles teacher-facing subject and roster endpoints.
type TeacherHandler struct {
	service *service.TeacherService
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(svc *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{service: svc}
}

// MySubjects godoc
// @Summary List subjects assigned to the caller
// @Tags Teacher
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teacher/subjects [get]
func (h *TeacherHandler) MySubjects(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	subjects, err := h.service.GetMySubjects(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subjects retrieved", gin.H{"subjects": subjects})
}

// MyStudents godoc
// @Summary List students enrolled in the caller's subjects
// @Tags Teacher
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teacher/students [get]
func (h *TeacherHandler) MyStudents(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	students, err := h.service.GetMyStudents(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "students retrieved", gin.H{"students": students})
}

// MyEnrollments godoc
// @Summary Per-subject rosters for the caller's subjects
// @Tags Teacher
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teacher/enrollments [get]
func (h *TeacherHandler) MyEnrollments(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rosters, err := h.service.GetMyEnrollments(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "enrollments retrieved", gin.H{"enrollments": rosters})
}

// ExportRoster godoc
// @Summary Download the caller's rosters as CSV or PDF
// @Tags Teacher
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /teacher/enrollments/export [get]
func (h *TeacherHandler) ExportRoster(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.service.ExportRoster(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Content)
}
