// Package testutil provides fixture helpers shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/epointy/backend/core"
	"github.com/epointy/backend/core/attendance"
	"github.com/epointy/backend/core/course"
	"github.com/epointy/backend/core/payment"
	"github.com/epointy/backend/core/user"
)

// NewConfig returns a config suitable for tests: defaults only, TEST mode,
// debug off so error responses keep their production shape.
func NewConfig(t *testing.T) *core.Config {
	t.Setenv("ENV", "TEST")
	t.Setenv("TEST_DEBUG", "false")
	return core.NewConfig(t.TempDir())
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		AvatarURL: user.DefaultAvatarURL(name),
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo user.Repository,
	name, email, major, level string,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:          name,
		Email:         email,
		Role:          user.RoleStudent,
		AvatarURL:     user.DefaultAvatarURL(name),
		StudentUUID:   uuid.New().String(),
		PaymentStatus: user.DefaultPaymentStatus,
		Major:         major,
		Level:         level,
		CreatedAt:     tstamp,
		UpdatedAt:     tstamp,
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	title, code string,
	profID int,
) course.Course {
	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Title:       title,
		Code:        code,
		ProfessorID: profID,
		Schedule:    "Mon 08:00-10:00",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreatePayment(
	t *testing.T,
	repo payment.Repository,
	studentID int,
	title string,
	amount float64,
	status string,
) payment.Payment {
	now := time.Now().UTC()
	pmt, err := repo.CreatePayment(context.Background(), payment.Payment{
		StudentID: studentID,
		Title:     title,
		Amount:    amount,
		Status:    status,
		DueDate:   now.AddDate(0, 1, 0),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return pmt
}

func CreateAttendance(
	t *testing.T,
	repo attendance.Repository,
	studentID, courseID, scannedByID int,
	status string,
	at time.Time,
) attendance.Attendance {
	att, err := repo.CreateAttendance(context.Background(), attendance.Attendance{
		StudentID:   studentID,
		CourseID:    courseID,
		ScannedByID: scannedByID,
		Status:      status,
		CreatedAt:   at.UTC(),
		UpdatedAt:   at.UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	return att
}
