package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/school-portal-api/internal/models"
)

const assignmentColumns = `a.id, a.teacher_id, a.subject_id, a.title, a.description, a.file_url,
       a.file_public_id, a.file_name, a.file_type, a.file_size, a.uploaded_at`

// CourseworkRepository persists coursework assignment records.
type CourseworkRepository struct {
	db *sqlx.DB
}

// NewCourseworkRepository constructs the repository.
func NewCourseworkRepository(db *sqlx.DB) *CourseworkRepository {
	return &CourseworkRepository{db: db}
}

// Create inserts a new assignment record.
func (r *CourseworkRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.UploadedAt.IsZero() {
		assignment.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, teacher_id, subject_id, title, description, file_url,
		file_public_id, file_name, file_type, file_size, uploaded_at)
		VALUES (:id, :teacher_id, :subject_id, :title, :description, :file_url,
		:file_public_id, :file_name, :file_type, :file_size, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment by id.
func (r *CourseworkRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments a WHERE a.id = $1 LIMIT 1`, assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// FindDetailByID returns an assignment joined with teacher and subject display fields.
func (r *CourseworkRepository) FindDetailByID(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	query := fmt.Sprintf(`
SELECT %s,
       u.name AS teacher_name, u.email AS teacher_email,
       s.name AS subject_name, s.code AS subject_code
FROM assignments a
JOIN users u ON u.id = a.teacher_id
JOIN subjects s ON s.id = a.subject_id
WHERE a.id = $1 LIMIT 1`, assignmentColumns)
	var detail models.AssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment detail: %w", err)
	}
	return &detail, nil
}

// ListByTeacher returns the teacher's assignments newest first, optionally
// filtered by subject.
func (r *CourseworkRepository) ListByTeacher(ctx context.Context, teacherID, subjectID string) ([]models.AssignmentDetail, error) {
	query := fmt.Sprintf(`
SELECT %s,
       u.name AS teacher_name, u.email AS teacher_email,
       s.name AS subject_name, s.code AS subject_code
FROM assignments a
JOIN users u ON u.id = a.teacher_id
JOIN subjects s ON s.id = a.subject_id
WHERE a.teacher_id = $1`, assignmentColumns)
	args := []interface{}{teacherID}
	if subjectID != "" {
		query += ` AND a.subject_id = $2`
		args = append(args, subjectID)
	}
	query += ` ORDER BY a.uploaded_at DESC`

	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// Delete removes an assignment record.
func (r *CourseworkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
