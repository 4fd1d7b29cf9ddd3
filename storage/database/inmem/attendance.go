package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/epointy/backend/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) query() []attendance.Attendance {
	atts := make([]attendance.Attendance, 0, len(repo.db.table))
	for _, att := range repo.db.table {
		atts = append(atts, *att)
	}
	return atts
}

func (repo *attendanceRepository) CreateAttendance(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	day := attendance.DayOf(att.CreatedAt)
	for _, existing := range repo.db.table {
		if existing.StudentID == att.StudentID &&
			existing.CourseID == att.CourseID &&
			attendance.DayOf(existing.CreatedAt).Equal(day) {
			return attendance.Attendance{}, attendance.ErrExists
		}
	}

	repo.db.pkCount++
	att.ID = repo.db.pkCount
	repo.db.table[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) GetAttendanceForDay(_ context.Context, studentID, courseID int, day time.Time) (attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	day = attendance.DayOf(day)
	for _, att := range repo.db.table {
		if att.StudentID == studentID &&
			att.CourseID == courseID &&
			attendance.DayOf(att.CreatedAt).Equal(day) {
			return *att, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpdateAttendance(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[att.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	orig.Status = att.Status
	orig.ScannedByID = att.ScannedByID
	orig.UpdatedAt = att.UpdatedAt
	return *orig, nil
}

func (repo *attendanceRepository) QueryAttendances(_ context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	atts := make([]attendance.Attendance, 0)
	for _, att := range repo.query() {
		if att.CourseID != filter.CourseID {
			continue
		}
		if !filter.Day.IsZero() && !attendance.DayOf(att.CreatedAt).Equal(attendance.DayOf(filter.Day)) {
			continue
		}
		atts = append(atts, att)
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].CreatedAt.After(atts[j].CreatedAt) })
	return atts, nil
}
