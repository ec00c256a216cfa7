package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/repository"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

type studentSubjectRepository interface {
	ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeacher, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type studentEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID, subjectID string) error
	ListSubjectsByStudent(ctx context.Context, studentID string) ([]models.EnrolledSubject, error)
}

// StudentService provides the student-facing catalog and enrollment flows.
type StudentService struct {
	subjects    studentSubjectRepository
	enrollments studentEnrollmentRepository
	logger      *zap.Logger
}

// NewStudentService creates an instance of StudentService.
func NewStudentService(subjects studentSubjectRepository, enrollments studentEnrollmentRepository, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{subjects: subjects, enrollments: enrollments, logger: logger}
}

// GetAvailableSubjects returns the full catalog with teacher decoration.
func (s *StudentService) GetAvailableSubjects(ctx context.Context) ([]models.SubjectWithTeacher, error) {
	subjects, err := s.subjects.ListWithTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.SubjectWithTeacher{}
	}
	return subjects, nil
}

// GetMyEnrolledSubjects returns the caller's current enrollments.
func (s *StudentService) GetMyEnrolledSubjects(ctx context.Context, studentID string) ([]models.EnrolledSubject, error) {
	enrolled, err := s.enrollments.ListSubjectsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled subjects")
	}
	if enrolled == nil {
		enrolled = []models.EnrolledSubject{}
	}
	return enrolled, nil
}

// Enroll adds the caller to a subject and returns the refreshed enrollment
// list. The unique constraint is the authority on double enrollment.
func (s *StudentService) Enroll(ctx context.Context, studentID, subjectID string) ([]models.EnrolledSubject, error) {
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	enrollment := &models.Enrollment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		SubjectID: subjectID,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}

	return s.GetMyEnrolledSubjects(ctx, studentID)
}

// Unenroll removes the caller from a subject and returns the refreshed list.
func (s *StudentService) Unenroll(ctx context.Context, studentID, subjectID string) ([]models.EnrolledSubject, error) {
	if err := s.enrollments.Delete(ctx, studentID, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unenroll")
	}

	return s.GetMyEnrolledSubjects(ctx, studentID)
}
