package payment

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("payment not found")

type (
	Repository interface {
		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		// QueryAllPayments returns all payments, newest first.
		QueryAllPayments(ctx context.Context) ([]Payment, error)
		// QueryPaymentsByStudent returns a student's payments, due date ascending.
		QueryPaymentsByStudent(ctx context.Context, studentID int) ([]Payment, error)
		GetPaymentByID(ctx context.Context, id int) (Payment, error)
		UpdatePayment(ctx context.Context, pmt Payment) (Payment, error)
		DeletePayment(ctx context.Context, id int) error
	}

	Service interface {
		Create(ctx context.Context, np NewPayment) (Payment, error)
		QueryAll(ctx context.Context) ([]Payment, error)
		QueryByStudent(ctx context.Context, studentID int) ([]Payment, error)
		GetByID(ctx context.Context, id int) (Payment, error)
		Update(ctx context.Context, id int, up UpdatePayment) (Payment, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, np NewPayment) (Payment, error) {
	now := time.Now().UTC()
	pmt := Payment{
		StudentID: np.StudentID,
		Title:     np.Title,
		Amount:    np.Amount,
		Status:    np.Status,
		DueDate:   np.DueDate.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreatePayment(ctx, pmt)
}

func (svc *service) QueryAll(ctx context.Context) ([]Payment, error) {
	return svc.repo.QueryAllPayments(ctx)
}

func (svc *service) QueryByStudent(ctx context.Context, studentID int) ([]Payment, error) {
	return svc.repo.QueryPaymentsByStudent(ctx, studentID)
}

func (svc *service) GetByID(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, up UpdatePayment) (Payment, error) {
	pmt := Payment{
		ID:        id,
		Title:     up.Title,
		Amount:    up.Amount,
		Status:    up.Status,
		DueDate:   up.DueDate.UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdatePayment(ctx, pmt)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeletePayment(ctx, id)
}
