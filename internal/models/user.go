package models

import "time"

// UserRole represents the available roles for access control.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// User represents an application user stored in the users table.
// The password hash never serializes.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	Department   *string   `db:"department" json:"department,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentWithSubjects is the admin list view of a student.
type StudentWithSubjects struct {
	User
	EnrolledSubjects []SubjectRef `json:"enrolledSubjects"`
	EnrolledCount    int          `json:"enrolledCount"`
}

// TeacherWithSubjects is the admin list view of a teacher.
type TeacherWithSubjects struct {
	User
	Subjects      []SubjectRef `json:"subjects"`
	SubjectsCount int          `json:"subjectsCount"`
}
