package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/service"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/response"
)

// TeachingHandler handles teacher to subject assignment endpoints.
type TeachingHandler struct {
	service *service.TeachingService
}

// NewTeachingHandler constructs a teaching handler.
func NewTeachingHandler(svc *service.TeachingService) *TeachingHandler {
	return &TeachingHandler{service: svc}
}

// AssignSubjects godoc
// @Summary Replace a teacher's subject assignments
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.AssignSubjectsRequest true "Teacher and subject ids"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/assign-subjects [post]
func (h *TeachingHandler) AssignSubjects(c *gin.Context) {
	var req service.AssignSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher, err := h.service.AssignSubjects(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subjects assigned", gin.H{"teacher": teacher})
}

// TeachersWithSubjects godoc
// @Summary List teachers joined with their assigned subjects
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/teachers-with-subjects [get]
func (h *TeachingHandler) TeachersWithSubjects(c *gin.Context) {
	teachers, err := h.service.ListTeachersWithSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "teachers retrieved", gin.H{"teachers": teachers})
}
