package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/service"
)

type fakeSubjectRepo struct {
	byID   map[string]*models.Subject
	byCode map[string]string
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{byID: map[string]*models.Subject{}, byCode: map[string]string{}}
}

func (f *fakeSubjectRepo) ListWithTeachers(context.Context) ([]models.SubjectWithTeacher, error) {
	out := make([]models.SubjectWithTeacher, 0, len(f.byID))
	for _, s := range f.byID {
		out = append(out, models.SubjectWithTeacher{Subject: *s, Teacher: "Not assigned"})
	}
	return out, nil
}

func (f *fakeSubjectRepo) FindByID(_ context.Context, id string) (*models.Subject, error) {
	subject, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (f *fakeSubjectRepo) ExistsByCode(_ context.Context, code, excludeID string) (bool, error) {
	id, ok := f.byCode[code]
	return ok && id != excludeID, nil
}

func (f *fakeSubjectRepo) Create(_ context.Context, subject *models.Subject) error {
	f.byID[subject.ID] = subject
	f.byCode[subject.Code] = subject.ID
	return nil
}

func (f *fakeSubjectRepo) Update(_ context.Context, subject *models.Subject) error {
	f.byID[subject.ID] = subject
	return nil
}

func (f *fakeSubjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func subjectJSONRequest(rec *httptest.ResponseRecorder, method, target, payload string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestSubjectHandlerCreateNormalizesCode(t *testing.T) {
	handler := NewSubjectHandler(service.NewSubjectService(newFakeSubjectRepo(), nil, nil))

	rec := httptest.NewRecorder()
	c := subjectJSONRequest(rec, http.MethodPost, "/admin/subjects", `{"name":"Math","code":" math101 "}`)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Message string         `json:"message"`
		Subject models.Subject `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "subject created", body.Message)
	assert.Equal(t, "MATH101", body.Subject.Code)
	assert.Equal(t, 3, body.Subject.Credits)
}

func TestSubjectHandlerCreateAcceptsStringCredits(t *testing.T) {
	handler := NewSubjectHandler(service.NewSubjectService(newFakeSubjectRepo(), nil, nil))

	rec := httptest.NewRecorder()
	c := subjectJSONRequest(rec, http.MethodPost, "/admin/subjects", `{"name":"Math","code":"MATH101","credits":"5"}`)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"credits":5`)
}

func TestSubjectHandlerCreateMissingName(t *testing.T) {
	handler := NewSubjectHandler(service.NewSubjectService(newFakeSubjectRepo(), nil, nil))

	rec := httptest.NewRecorder()
	c := subjectJSONRequest(rec, http.MethodPost, "/admin/subjects", `{"code":"MATH101"}`)

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION")
}

func TestSubjectHandlerCreateDuplicateCode(t *testing.T) {
	repo := newFakeSubjectRepo()
	repo.byCode["MATH101"] = "existing"
	handler := NewSubjectHandler(service.NewSubjectService(repo, nil, nil))

	rec := httptest.NewRecorder()
	c := subjectJSONRequest(rec, http.MethodPost, "/admin/subjects", `{"name":"Math","code":"MATH101"}`)

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_CODE")
}

func TestSubjectHandlerDeleteNotFound(t *testing.T) {
	handler := NewSubjectHandler(service.NewSubjectService(newFakeSubjectRepo(), nil, nil))

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/admin/subjects/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
