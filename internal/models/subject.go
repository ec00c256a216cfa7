package models

import (
	"bytes"
	"strconv"
	"time"
)

// Subject represents a catalog entry. Code is stored uppercase.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Credits     int       `db:"credits" json:"credits"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectRef is the compact subject shape attached to related records.
type SubjectRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}

// SubjectWithTeacher decorates a subject with display conveniences: the first
// assigned teacher's name (or "Not assigned") and the enrollment count.
type SubjectWithTeacher struct {
	Subject
	Teacher       string `db:"teacher" json:"teacher"`
	EnrolledCount int    `db:"enrolled_count" json:"enrolledCount"`
}

// FlexInt accepts JSON numbers or numeric strings; anything unparsable
// decodes to zero so callers can apply their defaults.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(n)
	return nil
}
