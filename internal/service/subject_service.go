package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/repository"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

const defaultSubjectCredits = 3

type subjectRepository interface {
	ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeacher, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

// CreateSubjectRequest represents payload for creating subjects. Credits
// tolerates numeric strings and falls back to the default when unparsable.
type CreateSubjectRequest struct {
	Name        string         `json:"name" validate:"required"`
	Code        string         `json:"code" validate:"required"`
	Credits     models.FlexInt `json:"credits"`
	Description *string        `json:"description"`
}

// UpdateSubjectRequest payload for updating subjects.
type UpdateSubjectRequest struct {
	Name        *string         `json:"name"`
	Code        *string         `json:"code"`
	Credits     *models.FlexInt `json:"credits"`
	Description *string         `json:"description"`
}

// SubjectService manages the subject catalog.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates an instance of SubjectService.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns the catalog decorated with teacher and enrollment info.
func (s *SubjectService) List(ctx context.Context) ([]models.SubjectWithTeacher, error) {
	subjects, err := s.repo.ListWithTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.SubjectWithTeacher{}
	}
	return subjects, nil
}

// Create adds a subject to the catalog.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create subject payload")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if exists, err := s.repo.ExistsByCode(ctx, code, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "")
	}

	credits := int(req.Credits)
	if credits <= 0 {
		credits = defaultSubjectCredits
	}

	subject := &models.Subject{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Code:        code,
		Credits:     credits,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	return subject, nil
}

// Update modifies a subject. Omitted fields keep their current value.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code != subject.Code {
			if exists, err := s.repo.ExistsByCode(ctx, code, subject.ID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
			} else if exists {
				return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "")
			}
		}
		subject.Code = code
	}
	if req.Credits != nil {
		credits := int(*req.Credits)
		if credits <= 0 {
			credits = defaultSubjectCredits
		}
		subject.Credits = credits
	}
	if req.Description != nil {
		subject.Description = req.Description
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}

	return subject, nil
}

// Delete removes a subject and its dependent records.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}
