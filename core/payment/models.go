package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/epointy/backend/core"
)

// Statuses. Transitions are unordered: a Payment may move to any status via
// a plain update (PAID does not have to pass through LATE).
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusLate    = "LATE"
)

type Payment struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewPayment contains information needed to create a new Payment (invoice).
type NewPayment struct {
	StudentID int       `json:"student_id" validate:"required"`
	Title     string    `json:"title" validate:"required"`
	Amount    float64   `json:"amount" validate:"required,gt=0"`
	Status    string    `json:"status" validate:"omitempty,oneof=PENDING PAID LATE"`
	DueDate   time.Time `json:"due_date" validate:"required"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	if np.Status == "" {
		np.Status = StatusPending
	}
	return validate.Struct(np)
}

// UpdatePayment defines what information may be provided to modify an existing Payment.
type UpdatePayment struct {
	Title   string    `json:"title"`
	Amount  float64   `json:"amount" validate:"omitempty,gt=0"`
	Status  string    `json:"status" validate:"omitempty,oneof=PENDING PAID LATE"`
	DueDate time.Time `json:"due_date"`
}

func (up *UpdatePayment) Validate(orig Payment, validate *validator.Validate) error {
	if title := core.CleanString(up.Title); title != "" {
		up.Title = title
	} else {
		up.Title = orig.Title
	}
	if up.Amount == 0 {
		up.Amount = orig.Amount
	}
	if up.Status == "" {
		up.Status = orig.Status
	}
	if up.DueDate.IsZero() {
		up.DueDate = orig.DueDate
	}
	return validate.Struct(up)
}
