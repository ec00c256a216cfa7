package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/school-portal-api/internal/models"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

type teachingUserRepository interface {
	FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type teachingSubjectRepository interface {
	CountByIDs(ctx context.Context, ids []string) (int, error)
}

type teachingAssignmentRepository interface {
	Replace(ctx context.Context, teacherID string, subjectIDs []string) error
	SubjectRefsByTeacher(ctx context.Context, teacherID string) ([]models.SubjectRef, error)
	AllSubjectRefs(ctx context.Context) ([]models.TeacherSubjectRef, error)
}

// AssignSubjectsRequest represents payload for assigning subjects to a teacher.
// The set replaces any previous assignments.
type AssignSubjectsRequest struct {
	TeacherID  string   `json:"teacherId" validate:"required"`
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1,dive,required"`
}

// TeachingService manages teacher to subject assignments.
type TeachingService struct {
	users     teachingUserRepository
	subjects  teachingSubjectRepository
	teaching  teachingAssignmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeachingService creates an instance of TeachingService.
func NewTeachingService(users teachingUserRepository, subjects teachingSubjectRepository, teaching teachingAssignmentRepository, validate *validator.Validate, logger *zap.Logger) *TeachingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeachingService{users: users, subjects: subjects, teaching: teaching, validator: validate, logger: logger}
}

// AssignSubjects atomically replaces a teacher's subject assignments and
// returns the teacher with the updated subject list.
func (s *TeachingService) AssignSubjects(ctx context.Context, req AssignSubjectsRequest) (*models.TeacherWithSubjects, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "teacherId and a non-empty subjectIds list are required")
	}

	teacher, err := s.users.FindByIDAndRole(ctx, req.TeacherID, models.RoleTeacher)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	subjectIDs := uniqueStrings(req.SubjectIDs)
	count, err := s.subjects.CountByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify subjects")
	}
	if count != len(subjectIDs) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more subjects not found")
	}

	if err := s.teaching.Replace(ctx, teacher.ID, subjectIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign subjects")
	}

	refs, err := s.teaching.SubjectRefsByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assigned subjects")
	}
	if refs == nil {
		refs = []models.SubjectRef{}
	}

	return &models.TeacherWithSubjects{
		User:          *teacher,
		Subjects:      refs,
		SubjectsCount: len(refs),
	}, nil
}

// ListTeachersWithSubjects returns every teacher joined with the subjects
// currently assigned to them.
func (s *TeachingService) ListTeachersWithSubjects(ctx context.Context) ([]models.TeacherWithSubjects, error) {
	teachers, err := s.users.ListByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	refs, err := s.teaching.AllSubjectRefs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assigned subjects")
	}
	byTeacher := make(map[string][]models.SubjectRef, len(teachers))
	for _, ref := range refs {
		byTeacher[ref.TeacherID] = append(byTeacher[ref.TeacherID], ref.SubjectRef)
	}

	out := make([]models.TeacherWithSubjects, 0, len(teachers))
	for _, teacher := range teachers {
		subjects := byTeacher[teacher.ID]
		if subjects == nil {
			subjects = []models.SubjectRef{}
		}
		out = append(out, models.TeacherWithSubjects{
			User:          teacher,
			Subjects:      subjects,
			SubjectsCount: len(subjects),
		})
	}
	return out, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
