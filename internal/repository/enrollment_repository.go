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

// EnrollmentRepository persists student-subject enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment. A duplicate (student, subject) pair surfaces
// as ErrDuplicate from the unique constraint.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, subject_id, enrolled_at)
		VALUES (:id, :student_id, :subject_id, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes the enrollment for a (student, subject) pair.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, subjectID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1 AND subject_id = $2`, studentID, subjectID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListSubjectsByStudent returns the student's enrolled subjects with the
// enrollment timestamp, ordered by subject name.
func (r *EnrollmentRepository) ListSubjectsByStudent(ctx context.Context, studentID string) ([]models.EnrolledSubject, error) {
	const query = `
SELECT s.id, s.name, s.code, s.credits, s.description, s.created_at, s.updated_at, e.enrolled_at
FROM enrollments e
JOIN subjects s ON s.id = e.subject_id
WHERE e.student_id = $1
ORDER BY s.name ASC`
	var subjects []models.EnrolledSubject
	if err := r.db.SelectContext(ctx, &subjects, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrolled subjects: %w", err)
	}
	return subjects, nil
}

// RosterByTeacher returns one row per (subject, enrolled student) for every
// subject assigned to the teacher. Subjects without enrollments produce a
// single row with null student columns.
func (r *EnrollmentRepository) RosterByTeacher(ctx context.Context, teacherID string) ([]models.TeacherRosterRow, error) {
	const query = `
SELECT s.id AS subject_id, s.name AS subject_name, s.code AS subject_code, s.credits AS subject_credits,
       u.id AS student_id, u.name AS student_name, u.email AS student_email, u.phone AS student_phone,
       e.enrolled_at
FROM teacher_subjects ts
JOIN subjects s ON s.id = ts.subject_id
LEFT JOIN enrollments e ON e.subject_id = s.id
LEFT JOIN users u ON u.id = e.student_id
WHERE ts.teacher_id = $1
ORDER BY s.name ASC, u.name ASC`
	var rows []models.TeacherRosterRow
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("load teacher roster: %w", err)
	}
	return rows, nil
}

// AllStudentSubjectRefs returns subject refs for every enrolled student, used
// to assemble the admin student list without per-row queries.
func (r *EnrollmentRepository) AllStudentSubjectRefs(ctx context.Context) ([]models.StudentSubjectRef, error) {
	const query = `
SELECT e.student_id, s.id, s.name, s.code
FROM enrollments e
JOIN subjects s ON s.id = e.subject_id
ORDER BY s.name ASC`
	var refs []models.StudentSubjectRef
	if err := r.db.SelectContext(ctx, &refs, query); err != nil {
		return nil, fmt.Errorf("list student subject refs: %w", err)
	}
	return refs, nil
}

// Count returns the total number of enrollments.
func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments`); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}
