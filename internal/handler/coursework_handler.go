package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/service"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/response"
)

// maxMultipartOverhead is the extra room allowed on top of the file size cap
// for the multipart boundaries and text fields of an upload request.
const maxMultipartOverhead = 64 << 10

// CourseworkHandler handles coursework upload and download endpoints.
type CourseworkHandler struct {
	service     *service.CourseworkService
	maxFileSize int64
}

// NewCourseworkHandler constructs a coursework handler. maxFileSize caps the
// request body on uploads before any multipart parsing, zero disables the cap.
func NewCourseworkHandler(svc *service.CourseworkService, maxFileSize int64) *CourseworkHandler {
	return &CourseworkHandler{service: svc, maxFileSize: maxFileSize}
}

// Upload godoc
// @Summary Upload a coursework file
// @Tags Teacher
// @Accept multipart/form-data
// @Produce json
// @Param subjectId formData string true "Subject ID"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param file formData file true "Coursework file"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teacher/assignments/upload [post]
func (h *CourseworkHandler) Upload(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// Cap the body before multipart parsing so oversized uploads are cut off
	// mid stream instead of being spooled to disk first.
	if h.maxFileSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+maxMultipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "uploaded file is too large"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read file"))
		return
	}
	defer file.Close() //nolint:errcheck

	input := service.UploadCourseworkInput{
		SubjectID:   c.PostForm("subjectId"),
		Title:       c.PostForm("title"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	}
	if description := strings.TrimSpace(c.PostForm("description")); description != "" {
		input.Description = &description
	}

	assignment, err := h.service.Upload(c.Request.Context(), claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "coursework uploaded", gin.H{"assignment": assignment})
}

// List godoc
// @Summary List the caller's coursework
// @Tags Teacher
// @Produce json
// @Param subjectId query string false "Filter by subject"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teacher/assignments [get]
func (h *CourseworkHandler) List(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignments, err := h.service.List(c.Request.Context(), claims.UserID, c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "assignments retrieved", gin.H{"assignments": assignments})
}

// Delete godoc
// @Summary Delete coursework owned by the caller
// @Tags Teacher
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teacher/assignments/{id} [delete]
func (h *CourseworkHandler) Delete(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "coursework deleted", nil)
}

// Download godoc
// @Summary Download a coursework file via a signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /files/{token} [get]
func (h *CourseworkHandler) Download(c *gin.Context) {
	file, assignment, err := h.service.OpenDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="`+assignment.FileName+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
