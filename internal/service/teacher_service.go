package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campushub/school-portal-api/internal/models"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
	"github.com/campushub/school-portal-api/pkg/export"
)

type teacherSubjectLister interface {
	ListSubjectsByTeacher(ctx context.Context, teacherID string) ([]models.Subject, error)
}

type teacherRosterRepository interface {
	RosterByTeacher(ctx context.Context, teacherID string) ([]models.TeacherRosterRow, error)
}

// ExportFormat identifies a roster export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered export bytes with transport metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// TeacherService provides the teacher-facing subject and roster views.
type TeacherService struct {
	teaching    teacherSubjectLister
	enrollments teacherRosterRepository
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewTeacherService creates an instance of TeacherService.
func NewTeacherService(teaching teacherSubjectLister, enrollments teacherRosterRepository, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{
		teaching:    teaching,
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// GetMySubjects returns the subjects assigned to the caller.
func (s *TeacherService) GetMySubjects(ctx context.Context, teacherID string) ([]models.Subject, error) {
	subjects, err := s.teaching.ListSubjectsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, nil
}

// GetMyEnrollments returns per-subject rosters for the caller's subjects.
func (s *TeacherService) GetMyEnrollments(ctx context.Context, teacherID string) ([]models.SubjectRoster, error) {
	rows, err := s.enrollments.RosterByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rosters")
	}

	rosters := make([]models.SubjectRoster, 0)
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.SubjectID]
		if !ok {
			i = len(rosters)
			index[row.SubjectID] = i
			rosters = append(rosters, models.SubjectRoster{
				ID:       row.SubjectID,
				Name:     row.SubjectName,
				Code:     row.SubjectCode,
				Credits:  row.SubjectCredits,
				Students: []models.RosterStudent{},
			})
		}
		if row.StudentID == nil {
			continue
		}
		student := models.RosterStudent{
			ID:    *row.StudentID,
			Name:  derefString(row.StudentName),
			Email: derefString(row.StudentEmail),
		}
		if row.EnrolledAt != nil {
			student.EnrolledAt = *row.EnrolledAt
		}
		rosters[i].Students = append(rosters[i].Students, student)
		rosters[i].StudentCount++
	}
	return rosters, nil
}

// GetMyStudents returns the deduplicated students across the caller's
// subjects, each annotated with the subjects they share with the caller.
func (s *TeacherService) GetMyStudents(ctx context.Context, teacherID string) ([]models.TeacherStudent, error) {
	rows, err := s.enrollments.RosterByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	students := make([]models.TeacherStudent, 0)
	index := make(map[string]int)
	for _, row := range rows {
		if row.StudentID == nil {
			continue
		}
		i, ok := index[*row.StudentID]
		if !ok {
			i = len(students)
			index[*row.StudentID] = i
			students = append(students, models.TeacherStudent{
				ID:               *row.StudentID,
				Name:             derefString(row.StudentName),
				Email:            derefString(row.StudentEmail),
				Phone:            row.StudentPhone,
				EnrolledSubjects: []models.SubjectRef{},
			})
		}
		students[i].EnrolledSubjects = append(students[i].EnrolledSubjects, models.SubjectRef{
			ID:   row.SubjectID,
			Name: row.SubjectName,
			Code: row.SubjectCode,
		})
	}
	return students, nil
}

// ExportRoster renders the caller's rosters as CSV or PDF.
func (s *TeacherService) ExportRoster(ctx context.Context, teacherID string, format ExportFormat) (*ExportResult, error) {
	rows, err := s.enrollments.RosterByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rosters")
	}

	data := export.Dataset{
		Headers: []string{"Subject", "Code", "Student", "Email", "Enrolled At"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		if row.StudentID == nil {
			continue
		}
		enrolledAt := ""
		if row.EnrolledAt != nil {
			enrolledAt = row.EnrolledAt.Format("2006-01-02")
		}
		data.Rows = append(data.Rows, map[string]string{
			"Subject":     row.SubjectName,
			"Code":        row.SubjectCode,
			"Student":     derefString(row.StudentName),
			"Email":       derefString(row.StudentEmail),
			"Enrolled At": enrolledAt,
		})
	}

	switch format {
	case ExportFormatCSV, "":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "roster.csv"}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(data, "Class Roster")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "roster.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", strings.ToLower(string(format))))
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
