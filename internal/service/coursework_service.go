package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/school-portal-api/internal/models"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/storage"
)

type courseworkRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	FindDetailByID(ctx context.Context, id string) (*models.AssignmentDetail, error)
	ListByTeacher(ctx context.Context, teacherID, subjectID string) ([]models.AssignmentDetail, error)
	Delete(ctx context.Context, id string) error
}

type courseworkTeachingRepository interface {
	Exists(ctx context.Context, teacherID, subjectID string) (bool, error)
}

type courseworkStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(publicID string) (*os.File, error)
	Delete(publicID string) error
}

type uploadMetricsRecorder interface {
	RecordUploadBytes(n int64)
}

// allowedUploadTypes maps accepted MIME types to their stored classification.
var allowedUploadTypes = map[string]models.FileType{
	"application/pdf": models.FileTypePDF,
	"image/jpeg":      models.FileTypeImage,
	"image/jpg":       models.FileTypeImage,
	"image/png":       models.FileTypeImage,
	"image/gif":       models.FileTypeImage,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": models.FileTypePPTX,
	"application/vnd.ms-powerpoint": models.FileTypePPT,
	"application/msword":            models.FileTypeDoc,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": models.FileTypeDocx,
}

// UploadCourseworkInput carries the multipart upload fields and file stream.
type UploadCourseworkInput struct {
	SubjectID   string  `validate:"required"`
	Title       string  `validate:"required"`
	Description *string `validate:"-"`
	FileName    string  `validate:"required"`
	ContentType string  `validate:"required"`
	Size        int64
	Reader      io.Reader `validate:"-"`
}

// CourseworkConfig bounds upload handling.
type CourseworkConfig struct {
	MaxFileSize int64
}

// CourseworkService manages coursework files for teachers.
type CourseworkService struct {
	repo      courseworkRepository
	teaching  courseworkTeachingRepository
	store     courseworkStore
	signer    *storage.SignedURLSigner
	config    CourseworkConfig
	metrics   uploadMetricsRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseworkService creates an instance of CourseworkService. The metrics
// recorder may be nil.
func NewCourseworkService(repo courseworkRepository, teaching courseworkTeachingRepository, store courseworkStore, signer *storage.SignedURLSigner, config CourseworkConfig, metrics uploadMetricsRecorder, validate *validator.Validate, logger *zap.Logger) *CourseworkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseworkService{repo: repo, teaching: teaching, store: store, signer: signer, config: config, metrics: metrics, validator: validate, logger: logger}
}

// Upload stores a coursework file for one of the caller's subjects.
func (s *CourseworkService) Upload(ctx context.Context, teacherID string, input UploadCourseworkInput) (*models.AssignmentDetail, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "subjectId, title and file are required")
	}
	if s.config.MaxFileSize > 0 && input.Size > s.config.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.config.MaxFileSize))
	}

	fileType, ok := classifyUpload(input.ContentType)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported file type")
	}

	assigned, err := s.teaching.Exists(ctx, teacherID, input.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teaching assignment")
	}
	if !assigned {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to you")
	}

	assignmentID := uuid.NewString()
	publicID := filepath.Join("coursework", assignmentID+strings.ToLower(filepath.Ext(input.FileName)))
	if _, err := s.store.SaveStream(publicID, input.Reader); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamStorage.Code, appErrors.ErrUpstreamStorage.Status, "failed to store file")
	}

	size := input.Size
	assignment := &models.Assignment{
		ID:           assignmentID,
		TeacherID:    teacherID,
		SubjectID:    input.SubjectID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		FileURL:      publicID,
		FilePublicID: publicID,
		FileName:     input.FileName,
		FileType:     fileType,
		FileSize:     &size,
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		if removeErr := s.store.Delete(publicID); removeErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("public_id", publicID), zap.Error(removeErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save coursework")
	}
	if s.metrics != nil {
		s.metrics.RecordUploadBytes(size)
	}

	detail, err := s.repo.FindDetailByID(ctx, assignment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coursework")
	}
	s.signDownloadLink(&detail.Assignment)
	return detail, nil
}

// List returns the caller's coursework, optionally filtered by subject.
func (s *CourseworkService) List(ctx context.Context, teacherID, subjectID string) ([]models.AssignmentDetail, error) {
	assignments, err := s.repo.ListByTeacher(ctx, teacherID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coursework")
	}
	if assignments == nil {
		assignments = []models.AssignmentDetail{}
	}
	for i := range assignments {
		s.signDownloadLink(&assignments[i].Assignment)
	}
	return assignments, nil
}

// signDownloadLink replaces the stored relative path with a freshly signed
// download link. Rows store only the storage path so links never expire in the
// database, each read mints its own token. Without a signer, or when signing
// fails, the raw path is left in place.
func (s *CourseworkService) signDownloadLink(assignment *models.Assignment) {
	if s.signer == nil {
		return
	}
	token, _, err := s.signer.Generate(assignment.ID, assignment.FilePublicID)
	if err != nil {
		s.logger.Warn("failed to sign download url",
			zap.String("assignment_id", assignment.ID),
			zap.Error(err))
		return
	}
	assignment.FileURL = "/files/" + token
}

// Delete removes coursework owned by the caller. The stored file is removed
// best effort, a storage failure never blocks the row delete.
func (s *CourseworkService) Delete(ctx context.Context, teacherID, assignmentID string) error {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "coursework not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coursework")
	}
	if assignment.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "coursework belongs to another teacher")
	}

	if err := s.store.Delete(assignment.FilePublicID); err != nil {
		s.logger.Warn("failed to delete stored file",
			zap.String("assignment_id", assignment.ID),
			zap.String("public_id", assignment.FilePublicID),
			zap.Error(err))
	}

	if err := s.repo.Delete(ctx, assignment.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "coursework not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete coursework")
	}
	return nil
}

// OpenDownload resolves a signed token to the stored file and its metadata.
func (s *CourseworkService) OpenDownload(ctx context.Context, token string) (io.ReadCloser, *models.Assignment, error) {
	if s.signer == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "downloads are not enabled")
	}
	assignmentID, publicID, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link")
	}

	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "coursework not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coursework")
	}
	if assignment.FilePublicID != publicID {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "download link does not match the file")
	}

	file, err := s.store.Open(assignment.FilePublicID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstreamStorage.Code, appErrors.ErrUpstreamStorage.Status, "failed to open file")
	}
	return file, assignment, nil
}

// classifyUpload maps a MIME type to its classification. Unlisted types are
// rejected at upload time, the other bucket only covers legacy rows.
func classifyUpload(contentType string) (models.FileType, bool) {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	fileType, ok := allowedUploadTypes[mime]
	if !ok {
		return models.FileTypeOther, false
	}
	return fileType, true
}
