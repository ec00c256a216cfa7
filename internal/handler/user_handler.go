package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/service"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/response"
)

// UserHandler handles the admin student and teacher directory endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// ListStudents godoc
// @Summary List students with enrolled subjects
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/students [get]
func (h *UserHandler) ListStudents(c *gin.Context) {
	students, err := h.service.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "students retrieved", gin.H{"students": students})
}

// CreateStudent godoc
// @Summary Register a student
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.CreateUserRequest true "Student payload"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/create-student [post]
func (h *UserHandler) CreateStudent(c *gin.Context) {
	h.create(c, models.RoleStudent, "student created")
}

// UpdateStudent godoc
// @Summary Update a student
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateUserRequest true "Student payload"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/students/{id} [put]
func (h *UserHandler) UpdateStudent(c *gin.Context) {
	h.update(c, models.RoleStudent, "student updated")
}

// DeleteStudent godoc
// @Summary Delete a student
// @Tags Admin
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/students/{id} [delete]
func (h *UserHandler) DeleteStudent(c *gin.Context) {
	h.delete(c, models.RoleStudent, "student deleted")
}

// ListTeachers godoc
// @Summary List teachers with assigned subjects
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/teachers [get]
func (h *UserHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.service.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "teachers retrieved", gin.H{"teachers": teachers})
}

// CreateTeacher godoc
// @Summary Register a teacher
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.CreateUserRequest true "Teacher payload"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/create-teacher [post]
func (h *UserHandler) CreateTeacher(c *gin.Context) {
	h.create(c, models.RoleTeacher, "teacher created")
}

// UpdateTeacher godoc
// @Summary Update a teacher
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.UpdateUserRequest true "Teacher payload"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/teachers/{id} [put]
func (h *UserHandler) UpdateTeacher(c *gin.Context) {
	h.update(c, models.RoleTeacher, "teacher updated")
}

// DeleteTeacher godoc
// @Summary Delete a teacher
// @Tags Admin
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/teachers/{id} [delete]
func (h *UserHandler) DeleteTeacher(c *gin.Context) {
	h.delete(c, models.RoleTeacher, "teacher deleted")
}

func (h *UserHandler) create(c *gin.Context, role models.UserRole, message string) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.service.Create(c.Request.Context(), role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message, gin.H{string(role): user})
}

func (h *UserHandler) update(c *gin.Context, role models.UserRole, message string) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.service.Update(c.Request.Context(), role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, gin.H{string(role): user})
}

func (h *UserHandler) delete(c *gin.Context, role models.UserRole, message string) {
	if err := h.service.Delete(c.Request.Context(), role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, nil)
}
