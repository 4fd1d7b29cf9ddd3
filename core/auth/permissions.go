// Package auth holds the app's capability predicates: plain functions of
// (actor, resource) returning permit/deny. Handlers and services compose
// them explicitly instead of branching on roles inline.
package auth

import (
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/course"
	"github.com/epointy/backend/core/payment"
	"github.com/epointy/backend/core/user"
)

// ErrForbidden signals an authorization gate denial. It is distinct from
// not-found and validation failures and maps to HTTP 403.
var ErrForbidden = errors.New("permission denied")

// CanManageUsers gates the user directory (list/create/update/delete).
func CanManageUsers(actor user.User) bool {
	return actor.IsAdmin()
}

// CanManageStudents gates student listing and enrollment.
func CanManageStudents(actor user.User) bool {
	return actor.IsAdmin() || actor.IsDirection()
}

// CanManagePayments gates payment creation and updates.
func CanManagePayments(actor user.User) bool {
	return actor.IsAdmin() || actor.IsDirection()
}

// CanViewPayments gates payment listing; students only see their own.
func CanViewPayments(actor user.User) bool {
	return actor.IsAdmin() || actor.IsDirection() || actor.IsStudent()
}

// CanDeletePayment gates payment deletion.
// ADMIN may delete any payment; DIRECTION_MEMBER may not delete a PAID one,
// preserving the audit trail.
func CanDeletePayment(actor user.User, pmt payment.Payment) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsDirection() {
		return pmt.Status != payment.StatusPaid
	}
	return false
}

// CanCreateCourse gates course creation.
func CanCreateCourse(actor user.User) bool {
	return actor.IsAdmin() || actor.IsProf()
}

// CanEditCourse gates course update and deletion: ADMIN for any course,
// PROF only for courses they own.
func CanEditCourse(actor user.User, crs course.Course) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsProf() {
		return actor.ID == crs.ProfessorID
	}
	return false
}

// CanUseScanner is the coarse gate on the scanning feature, checked before
// any course is selected.
func CanUseScanner(actor user.User) bool {
	return actor.IsAdmin() || actor.IsProf()
}

// CanMarkAttendance gates recording attendance for a specific course:
// ADMIN for any course, PROF only for courses they own.
func CanMarkAttendance(actor user.User, crs course.Course) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsProf() {
		return actor.ID == crs.ProfessorID
	}
	return false
}

// CanViewFinanceStats gates the direction dashboard.
func CanViewFinanceStats(actor user.User) bool {
	return actor.IsAdmin() || actor.IsDirection()
}
