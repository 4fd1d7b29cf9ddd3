package stats

import (
	"context"
	"time"
)

// MonthlyMetric is one month's aggregates for the direction dashboard charts.
type MonthlyMetric struct {
	Month          string  `json:"month"` // e.g. "2026-01"
	Revenue        float64 `json:"revenue"`
	AttendanceRate float64 `json:"attendance_rate"` // percentage, 0 when no records
}

// Overview is the direction dashboard payload.
type Overview struct {
	StudentCount int             `json:"student_count"`
	CourseCount  int             `json:"course_count"`
	PendingDues  float64         `json:"pending_dues"`
	Monthly      []MonthlyMetric `json:"monthly"`
}

// Months of history shown on the dashboard.
const MonthsShown = 6

type (
	Repository interface {
		CountStudents(ctx context.Context) (int, error)
		CountCourses(ctx context.Context) (int, error)
		// SumPendingDues totals non-PAID payment amounts.
		SumPendingDues(ctx context.Context) (float64, error)
		// MonthlyRevenue sums PAID payment amounts per month since `since`.
		MonthlyRevenue(ctx context.Context, since time.Time) (map[string]float64, error)
		// MonthlyAttendanceRate computes PRESENT records over all records per
		// month since `since`, as a percentage.
		MonthlyAttendanceRate(ctx context.Context, since time.Time) (map[string]float64, error)
	}

	Service interface {
		Overview(ctx context.Context) (Overview, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

var NowFunc = time.Now // mockable

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Overview(ctx context.Context) (Overview, error) {
	var ov Overview
	var err error

	if ov.StudentCount, err = svc.repo.CountStudents(ctx); err != nil {
		return Overview{}, err
	}
	if ov.CourseCount, err = svc.repo.CountCourses(ctx); err != nil {
		return Overview{}, err
	}
	if ov.PendingDues, err = svc.repo.SumPendingDues(ctx); err != nil {
		return Overview{}, err
	}

	now := NowFunc().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(MonthsShown - 1), 0)

	revenue, err := svc.repo.MonthlyRevenue(ctx, since)
	if err != nil {
		return Overview{}, err
	}
	rates, err := svc.repo.MonthlyAttendanceRate(ctx, since)
	if err != nil {
		return Overview{}, err
	}

	ov.Monthly = make([]MonthlyMetric, 0, MonthsShown)
	for i := 0; i < MonthsShown; i++ {
		month := since.AddDate(0, i, 0).Format("2006-01")
		ov.Monthly = append(ov.Monthly, MonthlyMetric{
			Month:          month,
			Revenue:        revenue[month],
			AttendanceRate: rates[month],
		})
	}
	return ov, nil
}
