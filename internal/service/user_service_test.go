package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/repository"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

type mockDirectoryRepo struct {
	users       map[string]*models.User
	emails      map[string]string
	createErr   error
	updateErr   error
	lastCreated *models.User
	lastUpdated *models.User
	deleted     []string
}

func newMockDirectoryRepo() *mockDirectoryRepo {
	return &mockDirectoryRepo{users: map[string]*models.User{}, emails: map[string]string{}}
}

func (m *mockDirectoryRepo) add(user *models.User) {
	m.users[user.ID] = user
	m.emails[user.Email] = user.ID
}

func (m *mockDirectoryRepo) FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	user, ok := m.users[id]
	if !ok || user.Role != role {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockDirectoryRepo) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockDirectoryRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	id, ok := m.emails[email]
	if !ok {
		return false, nil
	}
	return id != excludeID, nil
}

func (m *mockDirectoryRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.add(user)
	m.lastCreated = user
	return nil
}

func (m *mockDirectoryRepo) Update(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.add(user)
	m.lastUpdated = user
	return nil
}

func (m *mockDirectoryRepo) DeleteByIDAndRole(ctx context.Context, id string, role models.UserRole) error {
	user, ok := m.users[id]
	if !ok || user.Role != role {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockEnrollmentLister struct {
	refs []models.StudentSubjectRef
}

func (m *mockEnrollmentLister) AllStudentSubjectRefs(ctx context.Context) ([]models.StudentSubjectRef, error) {
	return m.refs, nil
}

type mockTeachingLister struct {
	refs []models.TeacherSubjectRef
}

func (m *mockTeachingLister) AllSubjectRefs(ctx context.Context) ([]models.TeacherSubjectRef, error) {
	return m.refs, nil
}

func newTestUserService(repo *mockDirectoryRepo, enrollments *mockEnrollmentLister, teaching *mockTeachingLister) *UserService {
	if enrollments == nil {
		enrollments = &mockEnrollmentLister{}
	}
	if teaching == nil {
		teaching = &mockTeachingLister{}
	}
	return NewUserService(repo, enrollments, teaching, validator.New(), zap.NewNop())
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := newMockDirectoryRepo()
	svc := newTestUserService(repo, nil, nil)

	user, err := svc.Create(context.Background(), models.RoleStudent, CreateUserRequest{
		Name:     "Jane Doe",
		Email:    "Jane@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := newMockDirectoryRepo()
	repo.add(&models.User{ID: "u1", Email: "taken@example.com", Role: models.RoleStudent})
	svc := newTestUserService(repo, nil, nil)

	_, err := svc.Create(context.Background(), models.RoleStudent, CreateUserRequest{
		Name:     "Jane",
		Email:    "taken@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
}

func TestUserServiceCreateDuplicateFromConstraint(t *testing.T) {
	repo := newMockDirectoryRepo()
	repo.createErr = repository.ErrDuplicate
	svc := newTestUserService(repo, nil, nil)

	_, err := svc.Create(context.Background(), models.RoleTeacher, CreateUserRequest{
		Name:     "Jane",
		Email:    "race@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateKeepsHashWithoutPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("original"), bcrypt.DefaultCost)
	repo := newMockDirectoryRepo()
	repo.add(&models.User{ID: "u1", Name: "Old Name", Email: "user@example.com", PasswordHash: string(hash), Role: models.RoleTeacher})
	svc := newTestUserService(repo, nil, nil)

	name := "New Name"
	updated, err := svc.Update(context.Background(), models.RoleTeacher, "u1", UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, string(hash), updated.PasswordHash)
}

func TestUserServiceUpdateRehashesNewPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("original"), bcrypt.DefaultCost)
	repo := newMockDirectoryRepo()
	repo.add(&models.User{ID: "u1", Name: "Name", Email: "user@example.com", PasswordHash: string(hash), Role: models.RoleTeacher})
	svc := newTestUserService(repo, nil, nil)

	password := "changed123"
	updated, err := svc.Update(context.Background(), models.RoleTeacher, "u1", UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	assert.NotEqual(t, string(hash), updated.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("changed123")))
}

func TestUserServiceUpdateWrongRole(t *testing.T) {
	repo := newMockDirectoryRepo()
	repo.add(&models.User{ID: "u1", Email: "user@example.com", Role: models.RoleStudent})
	svc := newTestUserService(repo, nil, nil)

	name := "x"
	_, err := svc.Update(context.Background(), models.RoleTeacher, "u1", UpdateUserRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeleteNotFound(t *testing.T) {
	repo := newMockDirectoryRepo()
	svc := newTestUserService(repo, nil, nil)

	err := svc.Delete(context.Background(), models.RoleStudent, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceListStudentsAttachesSubjects(t *testing.T) {
	repo := newMockDirectoryRepo()
	repo.add(&models.User{ID: "s1", Name: "Ann", Email: "ann@example.com", Role: models.RoleStudent})
	repo.add(&models.User{ID: "s2", Name: "Bob", Email: "bob@example.com", Role: models.RoleStudent})
	enrollments := &mockEnrollmentLister{refs: []models.StudentSubjectRef{
		{StudentID: "s1", SubjectRef: models.SubjectRef{ID: "sub1", Name: "Math", Code: "MATH101"}},
		{StudentID: "s1", SubjectRef: models.SubjectRef{ID: "sub2", Name: "Physics", Code: "PHY101"}},
	}}
	svc := newTestUserService(repo, enrollments, nil)

	students, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)

	byID := map[string]models.StudentWithSubjects{}
	for _, s := range students {
		byID[s.ID] = s
	}
	assert.Equal(t, 2, byID["s1"].EnrolledCount)
	assert.Len(t, byID["s1"].EnrolledSubjects, 2)
	assert.Equal(t, 0, byID["s2"].EnrolledCount)
	assert.NotNil(t, byID["s2"].EnrolledSubjects)
}

func TestUserServiceListTeachersAttachesSubjects(t *testing.T) {
	repo := newMockDirectoryRepo()
	repo.add(&models.User{ID: "t1", Name: "Prof", Email: "prof@example.com", Role: models.RoleTeacher})
	teaching := &mockTeachingLister{refs: []models.TeacherSubjectRef{
		{TeacherID: "t1", SubjectRef: models.SubjectRef{ID: "sub1", Name: "Math", Code: "MATH101"}},
	}}
	svc := newTestUserService(repo, nil, teaching)

	teachers, err := svc.ListTeachers(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, 1, teachers[0].SubjectsCount)
	assert.Equal(t, "MATH101", teachers[0].Subjects[0].Code)
}
