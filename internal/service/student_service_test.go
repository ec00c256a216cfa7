package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/repository"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

type mockStudentSubjectRepo struct {
	subjects map[string]*models.Subject
}

func (m *mockStudentSubjectRepo) ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeacher, error) {
	out := make([]models.SubjectWithTeacher, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, models.SubjectWithTeacher{Subject: *s, Teacher: "Not assigned"})
	}
	return out, nil
}

func (m *mockStudentSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

type mockStudentEnrollmentRepo struct {
	enrolled map[string]map[string]time.Time
	subjects map[string]*models.Subject
}

func newMockStudentEnrollmentRepo(subjects map[string]*models.Subject) *mockStudentEnrollmentRepo {
	return &mockStudentEnrollmentRepo{enrolled: map[string]map[string]time.Time{}, subjects: subjects}
}

func (m *mockStudentEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	byStudent := m.enrolled[enrollment.StudentID]
	if byStudent == nil {
		byStudent = map[string]time.Time{}
		m.enrolled[enrollment.StudentID] = byStudent
	}
	if _, exists := byStudent[enrollment.SubjectID]; exists {
		return repository.ErrDuplicate
	}
	byStudent[enrollment.SubjectID] = time.Now()
	return nil
}

func (m *mockStudentEnrollmentRepo) Delete(ctx context.Context, studentID, subjectID string) error {
	byStudent := m.enrolled[studentID]
	if _, exists := byStudent[subjectID]; !exists {
		return sql.ErrNoRows
	}
	delete(byStudent, subjectID)
	return nil
}

func (m *mockStudentEnrollmentRepo) ListSubjectsByStudent(ctx context.Context, studentID string) ([]models.EnrolledSubject, error) {
	var out []models.EnrolledSubject
	for subjectID, at := range m.enrolled[studentID] {
		subject := m.subjects[subjectID]
		out = append(out, models.EnrolledSubject{Subject: *subject, EnrolledAt: at})
	}
	return out, nil
}

func newTestStudentService(subjects map[string]*models.Subject) (*StudentService, *mockStudentEnrollmentRepo) {
	enrollments := newMockStudentEnrollmentRepo(subjects)
	svc := NewStudentService(&mockStudentSubjectRepo{subjects: subjects}, enrollments, zap.NewNop())
	return svc, enrollments
}

func TestStudentServiceEnrollReturnsRefreshedList(t *testing.T) {
	subjects := map[string]*models.Subject{
		"sub1": {ID: "sub1", Name: "Math", Code: "MATH101"},
	}
	svc, _ := newTestStudentService(subjects)

	enrolled, err := svc.Enroll(context.Background(), "s1", "sub1")
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "sub1", enrolled[0].ID)
}

func TestStudentServiceEnrollUnknownSubject(t *testing.T) {
	svc, _ := newTestStudentService(map[string]*models.Subject{})

	_, err := svc.Enroll(context.Background(), "s1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceEnrollTwice(t *testing.T) {
	subjects := map[string]*models.Subject{
		"sub1": {ID: "sub1", Name: "Math", Code: "MATH101"},
	}
	svc, _ := newTestStudentService(subjects)

	_, err := svc.Enroll(context.Background(), "s1", "sub1")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), "s1", "sub1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestStudentServiceUnenroll(t *testing.T) {
	subjects := map[string]*models.Subject{
		"sub1": {ID: "sub1", Name: "Math", Code: "MATH101"},
		"sub2": {ID: "sub2", Name: "Physics", Code: "PHY101"},
	}
	svc, _ := newTestStudentService(subjects)

	_, err := svc.Enroll(context.Background(), "s1", "sub1")
	require.NoError(t, err)
	_, err = svc.Enroll(context.Background(), "s1", "sub2")
	require.NoError(t, err)

	remaining, err := svc.Unenroll(context.Background(), "s1", "sub1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "sub2", remaining[0].ID)
}

func TestStudentServiceUnenrollNotEnrolled(t *testing.T) {
	svc, _ := newTestStudentService(map[string]*models.Subject{
		"sub1": {ID: "sub1"},
	})

	_, err := svc.Unenroll(context.Background(), "s1", "sub1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceEnrollmentsNeverNil(t *testing.T) {
	svc, _ := newTestStudentService(map[string]*models.Subject{})

	enrolled, err := svc.GetMyEnrolledSubjects(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, enrolled)
	assert.Empty(t, enrolled)
}
