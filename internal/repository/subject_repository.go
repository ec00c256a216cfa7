package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/pkg/database"
)

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListWithTeachers returns the catalog ordered by name, each subject decorated
// with its first assigned teacher's name and the enrollment count.
func (r *SubjectRepository) ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeacher, error) {
	const query = `
SELECT s.id, s.name, s.code, s.credits, s.description, s.created_at, s.updated_at,
       COALESCE((SELECT u.name FROM teacher_subjects ts JOIN users u ON u.id = ts.teacher_id
                 WHERE ts.subject_id = s.id ORDER BY ts.created_at ASC LIMIT 1), 'Not assigned') AS teacher,
       (SELECT COUNT(*) FROM enrollments e WHERE e.subject_id = s.id) AS enrolled_count
FROM subjects s
ORDER BY s.name ASC`
	var subjects []models.SubjectWithTeacher
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, code, credits, description, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByCode checks uniqueness of subject code case-insensitively.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := `SELECT 1 FROM subjects WHERE UPPER(code) = UPPER($1)`
	args := []interface{}{code}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+` LIMIT 1`, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// CountByIDs returns how many of the given subject ids exist.
func (r *SubjectRepository) CountByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM subjects WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("build subject id query: %w", err)
	}
	query = r.db.Rebind(query)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count subjects by ids: %w", err)
	}
	return count, nil
}

// Create persists a new subject. Duplicate codes surface as ErrDuplicate.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, name, code, credits, description, created_at, updated_at)
		VALUES (:id, :name, :code, :credits, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, code = :code, credits = :credits,
		description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject. Dependent rows cascade at the store level.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted subject rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the total number of subjects.
func (r *SubjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subjects`); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return count, nil
}
