package models

import "time"

// FileType is the coarse classification of an uploaded coursework file.
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
	FileTypePPTX  FileType = "pptx"
	FileTypePPT   FileType = "ppt"
	FileTypeDoc   FileType = "doc"
	FileTypeDocx  FileType = "docx"
	FileTypeOther FileType = "other"
)

// Assignment is a coursework file uploaded by a teacher for one subject.
type Assignment struct {
	ID           string    `db:"id" json:"id"`
	TeacherID    string    `db:"teacher_id" json:"teacherId"`
	SubjectID    string    `db:"subject_id" json:"subjectId"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description,omitempty"`
	FileURL      string    `db:"file_url" json:"fileUrl"`
	FilePublicID string    `db:"file_public_id" json:"filePublicId"`
	FileName     string    `db:"file_name" json:"fileName"`
	FileType     FileType  `db:"file_type" json:"fileType"`
	FileSize     *int64    `db:"file_size" json:"fileSize,omitempty"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// AssignmentDetail joins display fields for the owning teacher and subject.
type AssignmentDetail struct {
	Assignment
	TeacherName  string `db:"teacher_name" json:"teacherName"`
	TeacherEmail string `db:"teacher_email" json:"teacherEmail"`
	SubjectName  string `db:"subject_name" json:"subjectName"`
	SubjectCode  string `db:"subject_code" json:"subjectCode"`
}
