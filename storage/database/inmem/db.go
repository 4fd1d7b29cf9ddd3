// Package inmemdb provides map-backed repositories for tests.
package inmemdb

import (
	"sync"

	"github.com/epointy/backend/core/attendance"
	"github.com/epointy/backend/core/course"
	"github.com/epointy/backend/core/payment"
	"github.com/epointy/backend/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		payment    *paymentTable
		attendance *attendanceTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	courseTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*course.Course
	}

	paymentTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*payment.Payment
	}

	attendanceTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*attendance.Attendance
	}
)

func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[int]*user.User)},
		course:     &courseTable{table: make(map[int]*course.Course)},
		payment:    &paymentTable{table: make(map[int]*payment.Payment)},
		attendance: &attendanceTable{table: make(map[int]*attendance.Attendance)},
	}
}
