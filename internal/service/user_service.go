package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/repository"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

type directoryUserRepository interface {
	FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	DeleteByIDAndRole(ctx context.Context, id string, role models.UserRole) error
}

type studentEnrollmentLister interface {
	AllStudentSubjectRefs(ctx context.Context) ([]models.StudentSubjectRef, error)
}

type teacherAssignmentLister interface {
	AllSubjectRefs(ctx context.Context) ([]models.TeacherSubjectRef, error)
}

// CreateUserRequest represents payload for registering students and teachers.
type CreateUserRequest struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Department *string `json:"department"`
}

// UpdateUserRequest payload for updating students and teachers. Omitted
// fields keep their current value, an empty password keeps the old hash.
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Department *string `json:"department"`
}

// UserService handles the admin directory of students and teachers.
type UserService struct {
	repo        directoryUserRepository
	enrollments studentEnrollmentLister
	teaching    teacherAssignmentLister
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo directoryUserRepository, enrollments studentEnrollmentLister, teaching teacherAssignmentLister, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, enrollments: enrollments, teaching: teaching, validator: validate, logger: logger}
}

// ListStudents returns all students with their enrolled subjects attached.
func (s *UserService) ListStudents(ctx context.Context) ([]models.StudentWithSubjects, error) {
	students, err := s.repo.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	refs, err := s.enrollments.AllStudentSubjectRefs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	byStudent := make(map[string][]models.SubjectRef, len(students))
	for _, ref := range refs {
		byStudent[ref.StudentID] = append(byStudent[ref.StudentID], ref.SubjectRef)
	}

	result := make([]models.StudentWithSubjects, 0, len(students))
	for _, student := range students {
		subjects := byStudent[student.ID]
		if subjects == nil {
			subjects = []models.SubjectRef{}
		}
		result = append(result, models.StudentWithSubjects{
			User:             student,
			EnrolledSubjects: subjects,
			EnrolledCount:    len(subjects),
		})
	}
	return result, nil
}

// ListTeachers returns all teachers with their assigned subjects attached.
func (s *UserService) ListTeachers(ctx context.Context) ([]models.TeacherWithSubjects, error) {
	teachers, err := s.repo.ListByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	refs, err := s.teaching.AllSubjectRefs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching assignments")
	}

	byTeacher := make(map[string][]models.SubjectRef, len(teachers))
	for _, ref := range refs {
		byTeacher[ref.TeacherID] = append(byTeacher[ref.TeacherID], ref.SubjectRef)
	}

	result := make([]models.TeacherWithSubjects, 0, len(teachers))
	for _, teacher := range teachers {
		subjects := byTeacher[teacher.ID]
		if subjects == nil {
			subjects = []models.SubjectRef{}
		}
		result = append(result, models.TeacherWithSubjects{
			User:          teacher,
			Subjects:      subjects,
			SubjectsCount: len(subjects),
		})
	}
	return result, nil
}

// Create registers a new user under the given role.
func (s *UserService) Create(ctx context.Context, role models.UserRole, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if exists, err := s.repo.ExistsByEmail(ctx, email, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		Phone:        req.Phone,
		Address:      req.Address,
		Department:   req.Department,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	return user, nil
}

// Update modifies a user of the given role.
func (s *UserService) Update(ctx context.Context, role models.UserRole, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	user, err := s.repo.FindByIDAndRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, string(role)+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if exists, err := s.repo.ExistsByEmail(ctx, email, user.ID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
			} else if exists {
				return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
			}
		}
		user.Email = email
	}
	if req.Password != nil && *req.Password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(passwordHash)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}
	if req.Department != nil {
		user.Department = req.Department
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	return user, nil
}

// Delete removes a user of the given role along with dependent records.
func (s *UserService) Delete(ctx context.Context, role models.UserRole, id string) error {
	if err := s.repo.DeleteByIDAndRole(ctx, id, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, string(role)+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}
