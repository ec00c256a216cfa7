package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/service"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/response"
)

// StudentHandler handles student-facing catalog and enrollment endpoints.
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// AvailableSubjects godoc
// @Summary Browse the subject catalog
// @Tags Student
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /student/subjects [get]
func (h *StudentHandler) AvailableSubjects(c *gin.Context) {
	subjects, err := h.service.GetAvailableSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subjects retrieved", gin.H{"subjects": subjects})
}

// MyEnrollments godoc
// @Summary List the caller's enrolled subjects
// @Tags Student
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /student/enrolled-subjects [get]
func (h *StudentHandler) MyEnrollments(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	enrolled, err := h.service.GetMyEnrolledSubjects(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "enrollments retrieved", gin.H{"enrolledSubjects": enrolled})
}

// Enroll godoc
// @Summary Enroll the caller in a subject
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body object true "Subject id"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /student/enroll [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req struct {
		SubjectID string `json:"subjectId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SubjectID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subjectId is required"))
		return
	}
	enrolled, err := h.service.Enroll(c.Request.Context(), claims.UserID, req.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "enrolled successfully", gin.H{"enrolledSubjects": enrolled})
}

// Unenroll godoc
// @Summary Remove the caller from a subject
// @Tags Student
// @Produce json
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /student/unenroll/{subjectId} [delete]
func (h *StudentHandler) Unenroll(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	enrolled, err := h.service.Unenroll(c.Request.Context(), claims.UserID, c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "unenrolled successfully", gin.H{"enrolledSubjects": enrolled})
}
