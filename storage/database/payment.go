package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/payment"
)

type dbPayment struct {
	ID        int       `db:"id"`
	StudentID int       `db:"student_id"`
	Title     string    `db:"title"`
	Amount    float64   `db:"amount"`
	Status    string    `db:"status"`
	DueDate   time.Time `db:"due_date"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (p dbPayment) toCore() payment.Payment {
	return payment.Payment(p)
}

const paymentColumns = `id, student_id, title, amount, status, due_date, created_at, updated_at`

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo paymentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return payment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo paymentRepository) CreatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO payment (student_id, title, amount, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		pmt.StudentID, pmt.Title, pmt.Amount, pmt.Status, pmt.DueDate.UTC(),
		pmt.CreatedAt.UTC(), pmt.UpdatedAt.UTC(),
	).Scan(&pmt.ID)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return pmt, nil
}

func (repo paymentRepository) QueryAllPayments(ctx context.Context) ([]payment.Payment, error) {
	var payments []dbPayment
	err := repo.db.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payment ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return repo.toCoreSlice(payments), nil
}

func (repo paymentRepository) QueryPaymentsByStudent(ctx context.Context, studentID int) ([]payment.Payment, error) {
	var payments []dbPayment
	err := repo.db.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payment WHERE student_id = $1 ORDER BY due_date ASC`,
		studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments by student")
	}
	return repo.toCoreSlice(payments), nil
}

func (repo paymentRepository) GetPaymentByID(ctx context.Context, id int) (payment.Payment, error) {
	var p dbPayment
	err := repo.db.GetContext(ctx, &p,
		`SELECT `+paymentColumns+` FROM payment WHERE id = $1`, id)
	if err != nil {
		return payment.Payment{}, repo.trapNoRowsErr(err, "getting payment by ID")
	}
	return p.toCore(), nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	var updated dbPayment
	err := repo.db.GetContext(ctx, &updated,
		`UPDATE payment
		SET title = $2, amount = $3, status = $4, due_date = $5, updated_at = $6
		WHERE id = $1
		RETURNING `+paymentColumns,
		pmt.ID, pmt.Title, pmt.Amount, pmt.Status, pmt.DueDate.UTC(), pmt.UpdatedAt.UTC())
	if err != nil {
		return payment.Payment{}, repo.trapNoRowsErr(err, "updating payment")
	}
	return updated.toCore(), nil
}

func (repo paymentRepository) DeletePayment(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM payment WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return nil
}

func (repo paymentRepository) toCoreSlice(payments []dbPayment) []payment.Payment {
	res := make([]payment.Payment, 0, len(payments))
	for _, p := range payments {
		res = append(res, p.toCore())
	}
	return res
}
