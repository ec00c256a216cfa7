package models

// Stats holds the admin dashboard aggregate counters.
type Stats struct {
	TotalStudents    int `json:"totalStudents"`
	TotalTeachers    int `json:"totalTeachers"`
	TotalSubjects    int `json:"totalSubjects"`
	TotalEnrollments int `json:"totalEnrollments"`
}
