package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/school-portal-api/internal/models"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects map[string]*models.Subject
	codes    map[string]string
	listed   []models.SubjectWithTeacher
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: map[string]*models.Subject{}, codes: map[string]string{}}
}

func (m *mockSubjectRepo) add(subject *models.Subject) {
	m.subjects[subject.ID] = subject
	m.codes[subject.Code] = subject.ID
}

func (m *mockSubjectRepo) ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeacher, error) {
	return m.listed, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *subject
	return &copied, nil
}

func (m *mockSubjectRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	id, ok := m.codes[code]
	if !ok {
		return false, nil
	}
	return id != excludeID, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	m.add(subject)
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.add(subject)
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.subjects[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.subjects, id)
	return nil
}

func newTestSubjectService(repo *mockSubjectRepo) *SubjectService {
	return NewSubjectService(repo, validator.New(), zap.NewNop())
}

func TestSubjectServiceCreateUppercasesCode(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := newTestSubjectService(repo)

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{
		Name:    "Mathematics",
		Code:    " math101 ",
		Credits: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "MATH101", subject.Code)
	assert.Equal(t, 4, subject.Credits)
}

func TestSubjectServiceCreateDefaultsCredits(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := newTestSubjectService(repo)

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "History", Code: "HIS101"})
	require.NoError(t, err)
	assert.Equal(t, defaultSubjectCredits, subject.Credits)
}

func TestSubjectServiceCreditsTolerateStrings(t *testing.T) {
	var req CreateSubjectRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Bio","code":"BIO1","credits":"5"}`), &req))
	assert.Equal(t, models.FlexInt(5), req.Credits)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Bio","code":"BIO1","credits":"lots"}`), &req))
	assert.Equal(t, models.FlexInt(0), req.Credits)
}

func TestSubjectServiceCreateDuplicateCode(t *testing.T) {
	repo := newMockSubjectRepo()
	repo.add(&models.Subject{ID: "sub1", Name: "Math", Code: "MATH101"})
	svc := newTestSubjectService(repo)

	_, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Other Math", Code: "math101"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateCode.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceUpdatePartial(t *testing.T) {
	repo := newMockSubjectRepo()
	repo.add(&models.Subject{ID: "sub1", Name: "Math", Code: "MATH101", Credits: 3})
	svc := newTestSubjectService(repo)

	name := "Advanced Math"
	subject, err := svc.Update(context.Background(), "sub1", UpdateSubjectRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Advanced Math", subject.Name)
	assert.Equal(t, "MATH101", subject.Code)
	assert.Equal(t, 3, subject.Credits)
}

func TestSubjectServiceUpdateNotFound(t *testing.T) {
	svc := newTestSubjectService(newMockSubjectRepo())

	name := "x"
	_, err := svc.Update(context.Background(), "missing", UpdateSubjectRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceDeleteNotFound(t *testing.T) {
	svc := newTestSubjectService(newMockSubjectRepo())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceListNeverNil(t *testing.T) {
	svc := newTestSubjectService(newMockSubjectRepo())

	subjects, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, subjects)
	assert.Empty(t, subjects)
}
