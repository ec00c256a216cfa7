package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/service"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/response"
)

// SubjectHandler handles subject catalog endpoints.
type SubjectHandler struct {
	service *service.SubjectService
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// List godoc
// @Summary List subjects with teacher and enrollment info
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subjects retrieved", gin.H{"subjects": subjects})
}

// Create godoc
// @Summary Create a subject
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/create-subject [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req service.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "subject created", gin.H{"subject": subject})
}

// Update godoc
// @Summary Update a subject
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body service.UpdateSubjectRequest true "Subject payload"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req service.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subject updated", gin.H{"subject": subject})
}

// Delete godoc
// @Summary Delete a subject
// @Tags Admin
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subject deleted", nil)
}
