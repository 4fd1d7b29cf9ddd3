package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/attendance"
)

type dbAttendance struct {
	ID          int       `db:"id"`
	StudentID   int       `db:"student_id"`
	CourseID    int       `db:"course_id"`
	ScannedByID int       `db:"scanned_by_id"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (a dbAttendance) toCore() attendance.Attendance {
	return attendance.Attendance(a)
}

const attendanceColumns = `id, student_id, course_id, scanned_by_id, status, created_at, updated_at`

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO attendance (student_id, course_id, scanned_by_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		att.StudentID, att.CourseID, att.ScannedByID, att.Status,
		att.CreatedAt.UTC(), att.UpdatedAt.UTC(),
	).Scan(&att.ID)
	if err != nil {
		if isUniqueViolation(err, "attendance_student_course_day_key") {
			return attendance.Attendance{}, attendance.ErrExists
		}
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return att, nil
}

func (repo attendanceRepository) GetAttendanceForDay(ctx context.Context, studentID, courseID int, day time.Time) (attendance.Attendance, error) {
	var a dbAttendance
	err := repo.db.GetContext(ctx, &a,
		`SELECT `+attendanceColumns+` FROM attendance
		WHERE student_id = $1 AND course_id = $2
			AND (created_at AT TIME ZONE 'UTC')::date = $3::date`,
		studentID, courseID, attendance.DayOf(day))
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, errors.Wrap(err, "getting attendance for day")
	}
	return a.toCore(), nil
}

func (repo attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	var updated dbAttendance
	err := repo.db.GetContext(ctx, &updated,
		`UPDATE attendance
		SET status = $2, scanned_by_id = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+attendanceColumns,
		att.ID, att.Status, att.ScannedByID, att.UpdatedAt.UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	return updated.toCore(), nil
}

func (repo attendanceRepository) QueryAttendances(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	q := `SELECT ` + attendanceColumns + ` FROM attendance WHERE course_id = $1`
	args := []interface{}{filter.CourseID}
	if !filter.Day.IsZero() {
		q += ` AND (created_at AT TIME ZONE 'UTC')::date = $2::date`
		args = append(args, attendance.DayOf(filter.Day))
	}
	q += ` ORDER BY created_at DESC`

	var atts []dbAttendance
	if err := repo.db.SelectContext(ctx, &atts, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendances")
	}
	res := make([]attendance.Attendance, 0, len(atts))
	for _, a := range atts {
		res = append(res, a.toCore())
	}
	return res, nil
}
