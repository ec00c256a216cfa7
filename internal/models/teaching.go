package models

import "time"

// TeachingAssignment links a teacher to a subject they may teach.
// The (teacher, subject) pair is unique.
type TeachingAssignment struct {
	TeacherID string    `db:"teacher_id" json:"teacherId"`
	SubjectID string    `db:"subject_id" json:"subjectId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// TeacherSubjectRef is a join row pairing a teacher id with a subject ref.
type TeacherSubjectRef struct {
	TeacherID string `db:"teacher_id"`
	SubjectRef
}
