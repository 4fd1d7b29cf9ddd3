package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/attendance"
	"github.com/epointy/backend/core/payment"
	"github.com/epointy/backend/core/stats"
	"github.com/epointy/backend/core/user"
)

type statsRepository struct {
	db *sqlx.DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *sqlx.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo statsRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM "user" WHERE role = $1`, user.RoleStudent)
	if err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return count, nil
}

func (repo statsRepository) CountCourses(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM course`); err != nil {
		return 0, errors.Wrap(err, "counting courses")
	}
	return count, nil
}

func (repo statsRepository) SumPendingDues(ctx context.Context) (float64, error) {
	var sum float64
	err := repo.db.GetContext(ctx, &sum,
		`SELECT COALESCE(SUM(amount), 0) FROM payment WHERE status <> $1`, payment.StatusPaid)
	if err != nil {
		return 0, errors.Wrap(err, "summing pending dues")
	}
	return sum, nil
}

func (repo statsRepository) MonthlyRevenue(ctx context.Context, since time.Time) (map[string]float64, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT to_char(updated_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month, SUM(amount)
		FROM payment
		WHERE status = $1 AND updated_at >= $2
		GROUP BY month`,
		payment.StatusPaid, since.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "querying monthly revenue")
	}
	defer func() { _ = rows.Close() }()

	revenue := make(map[string]float64)
	for rows.Next() {
		var month string
		var amount float64
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, errors.Wrap(err, "scanning monthly revenue")
		}
		revenue[month] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading monthly revenue")
	}
	return revenue, nil
}

func (repo statsRepository) MonthlyAttendanceRate(ctx context.Context, since time.Time) (map[string]float64, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month,
			100.0 * COUNT(*) FILTER (WHERE status = $1) / COUNT(*)
		FROM attendance
		WHERE created_at >= $2
		GROUP BY month`,
		attendance.StatusPresent, since.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "querying monthly attendance rate")
	}
	defer func() { _ = rows.Close() }()

	rates := make(map[string]float64)
	for rows.Next() {
		var month string
		var rate float64
		if err := rows.Scan(&month, &rate); err != nil {
			return nil, errors.Wrap(err, "scanning monthly attendance rate")
		}
		rates[month] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading monthly attendance rate")
	}
	return rates, nil
}
