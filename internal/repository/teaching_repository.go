package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/pkg/database"
)

// TeachingRepository persists teacher-subject assignments.
type TeachingRepository struct {
	db *sqlx.DB
}

// NewTeachingRepository constructs the repository.
func NewTeachingRepository(db *sqlx.DB) *TeachingRepository {
	return &TeachingRepository{db: db}
}

// Replace swaps a teacher's assignment set for the given subject ids in one
// transaction: omitting a previously assigned subject un-assigns it, and a
// crash can never leave the set half-written.
func (r *TeachingRepository) Replace(ctx context.Context, teacherID string, subjectIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_subjects WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear teacher assignments: %w", err)
	}

	now := time.Now().UTC()
	for _, subjectID := range subjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teacher_subjects (teacher_id, subject_id, created_at) VALUES ($1, $2, $3)`,
			teacherID, subjectID, now,
		); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert teacher assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment replace: %w", err)
	}
	return nil
}

// Exists reports whether the teacher is assigned to the subject.
func (r *TeachingRepository) Exists(ctx context.Context, teacherID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teaching assignment: %w", err)
	}
	return true, nil
}

// ListSubjectsByTeacher returns the full subjects assigned to a teacher.
func (r *TeachingRepository) ListSubjectsByTeacher(ctx context.Context, teacherID string) ([]models.Subject, error) {
	const query = `
SELECT s.id, s.name, s.code, s.credits, s.description, s.created_at, s.updated_at
FROM teacher_subjects ts
JOIN subjects s ON s.id = ts.subject_id
WHERE ts.teacher_id = $1
ORDER BY s.name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}

// SubjectRefsByTeacher returns compact subject refs for one teacher.
func (r *TeachingRepository) SubjectRefsByTeacher(ctx context.Context, teacherID string) ([]models.SubjectRef, error) {
	const query = `
SELECT s.id, s.name, s.code
FROM teacher_subjects ts
JOIN subjects s ON s.id = ts.subject_id
WHERE ts.teacher_id = $1
ORDER BY s.name ASC`
	var refs []models.SubjectRef
	if err := r.db.SelectContext(ctx, &refs, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subject refs: %w", err)
	}
	return refs, nil
}

// AllSubjectRefs returns subject refs for every teacher, used to assemble
// teacher list views without per-row queries.
func (r *TeachingRepository) AllSubjectRefs(ctx context.Context) ([]models.TeacherSubjectRef, error) {
	const query = `
SELECT ts.teacher_id, s.id, s.name, s.code
FROM teacher_subjects ts
JOIN subjects s ON s.id = ts.subject_id
ORDER BY s.name ASC`
	var refs []models.TeacherSubjectRef
	if err := r.db.SelectContext(ctx, &refs, query); err != nil {
		return nil, fmt.Errorf("list teacher subject refs: %w", err)
	}
	return refs, nil
}
