package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Statuses
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
)

// Attendance is one record per (student, course, calendar day). Repeated
// marks on the same day update the record in place; it is never duplicated.
type Attendance struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"student_id"`
	CourseID    int       `json:"course_id"`
	ScannedByID int       `json:"scanned_by_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC; its calendar day is the dedup key
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// MarkAttendance contains information needed to record an attendance.
type MarkAttendance struct {
	StudentID int    `json:"student_id" validate:"required"`
	CourseID  int    `json:"course_id" validate:"required"`
	Status    string `json:"status" validate:"omitempty,oneof=PRESENT ABSENT"`
}

func (ma *MarkAttendance) Validate(validate *validator.Validate) error {
	if ma.Status == "" {
		ma.Status = StatusPresent
	}
	return validate.Struct(ma)
}

// StudentProfile is the snapshot returned to the scanner UI after a lookup.
type StudentProfile struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Major         string `json:"major,omitempty"`
	Level         string `json:"level,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

// ScanResult is the outcome of resolving a scanned code. A miss is a normal
// outcome (Valid=false), not an error.
type ScanResult struct {
	Valid     bool            `json:"valid"`
	Student   *StudentProfile `json:"student,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// QueryFilter narrows attendance listings to a course, optionally to the
// UTC calendar day of Day.
type QueryFilter struct {
	CourseID int       `query:"course_id"`
	Day      time.Time `query:"day"`
}

// DayOf truncates a timestamp to its UTC calendar day, the authoritative
// dedup key. Single truncation point: the storage layer enforces the same
// boundary with its expression unique index.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
