package models

import "time"

// Enrollment links a student to a subject. The (student, subject) pair is unique.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"studentId"`
	SubjectID  string    `db:"subject_id" json:"subjectId"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolledAt"`
}

// EnrolledSubject is a subject annotated with the caller's enrollment time.
type EnrolledSubject struct {
	Subject
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolledAt"`
}

// RosterStudent is one student row inside a subject roster.
type RosterStudent struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolledAt"`
}

// SubjectRoster groups a teacher's subject with its enrolled students.
type SubjectRoster struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Code         string          `json:"code"`
	Credits      int             `json:"credits"`
	Students     []RosterStudent `json:"students"`
	StudentCount int             `json:"studentCount"`
}

// StudentSubjectRef is a join row pairing a student id with a subject ref.
type StudentSubjectRef struct {
	StudentID string `db:"student_id"`
	SubjectRef
}

// TeacherRosterRow is one row of the teacher roster join. Student columns are
// nullable because subjects without enrollments still produce a row.
type TeacherRosterRow struct {
	SubjectID      string     `db:"subject_id"`
	SubjectName    string     `db:"subject_name"`
	SubjectCode    string     `db:"subject_code"`
	SubjectCredits int        `db:"subject_credits"`
	StudentID      *string    `db:"student_id"`
	StudentName    *string    `db:"student_name"`
	StudentEmail   *string    `db:"student_email"`
	StudentPhone   *string    `db:"student_phone"`
	EnrolledAt     *time.Time `db:"enrolled_at"`
}

// TeacherStudent is the deduplicated student view for a teacher, annotated
// with which of the teacher's own subjects the student is enrolled in.
type TeacherStudent struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	Phone            *string      `json:"phone,omitempty"`
	EnrolledSubjects []SubjectRef `json:"enrolledSubjects"`
}
