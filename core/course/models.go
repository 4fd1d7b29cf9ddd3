package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/epointy/backend/core"
)

type Course struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	ProfessorID int       `json:"professor_id"`
	Schedule    string    `json:"schedule"` // opaque display string
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
// The owning professor is the acting user unless an admin assigns another.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Schedule    string `json:"schedule" validate:"required"`
	ProfessorID int    `json:"professor_id"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Code = core.CleanString(nc.Code)
	nc.Schedule = core.CleanString(nc.Schedule)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title    string `json:"title"`
	Code     string `json:"code"`
	Schedule string `json:"schedule"`
}

func (uc *UpdateCourse) Validate(orig Course, validate *validator.Validate) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}

	if code := core.CleanString(uc.Code); code != "" {
		uc.Code = code
	} else {
		uc.Code = orig.Code
	}

	if sched := core.CleanString(uc.Schedule); sched != "" {
		uc.Schedule = sched
	} else {
		uc.Schedule = orig.Schedule
	}

	return validate.Struct(uc)
}
