package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/epointy/backend/core/auth"
	"github.com/epointy/backend/core/course"
	"github.com/epointy/backend/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("attendance record not found")
	// ErrExists is returned by repositories when an insert collides with the
	// per-day uniqueness constraint; the service converges it to an update.
	ErrExists = errors.New("attendance already recorded for this day")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CreateAttendance inserts a record; returns ErrExists if one already
		// holds (student, course, UTC day of CreatedAt).
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		// GetAttendanceForDay fetches the record whose CreatedAt falls on the
		// given UTC calendar day; ErrNotFound if absent.
		GetAttendanceForDay(ctx context.Context, studentID, courseID int, day time.Time) (Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		QueryAttendances(ctx context.Context, filter QueryFilter) ([]Attendance, error)
	}

	// StudentDirectory is the slice of the user service the scanner needs.
	StudentDirectory interface {
		GetStudentByScanUUID(ctx context.Context, scanUUID string) (user.User, error)
	}

	// CourseGetter is the slice of the course service the ledger needs.
	CourseGetter interface {
		GetByID(ctx context.Context, id int) (course.Course, error)
	}

	Service interface {
		ResolveScan(ctx context.Context, scanUUID string) (ScanResult, error)
		// Mark upserts the day's record; created reports whether a new record
		// was written (as opposed to an update of an existing one).
		Mark(ctx context.Context, actor user.User, ma MarkAttendance) (att Attendance, created bool, err error)
		Query(ctx context.Context, actor user.User, filter QueryFilter) ([]Attendance, error)
	}

	service struct {
		repo     Repository
		students StudentDirectory
		courses  CourseGetter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students StudentDirectory, courses CourseGetter) *service {
	return &service{
		repo:     repo,
		students: students,
		courses:  courses,
	}
}

// ResolveScan maps a scanned code to a student profile snapshot. The code is
// matched exactly (case-sensitive); an unknown code is a Valid=false result
// with the same timestamp shape, never an error. Read-only.
func (svc *service) ResolveScan(ctx context.Context, scanUUID string) (ScanResult, error) {
	now := NowFunc().UTC()

	usr, err := svc.students.GetStudentByScanUUID(ctx, scanUUID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return ScanResult{
				Valid:     false,
				Message:   "unknown student or invalid code",
				Timestamp: now,
			}, nil
		}
		return ScanResult{}, errors.Wrap(err, "finding student by scan code")
	}

	return ScanResult{
		Valid: true,
		Student: &StudentProfile{
			ID:            usr.ID,
			Name:          usr.Name,
			Major:         usr.Major,
			Level:         usr.Level,
			PaymentStatus: usr.PaymentStatus,
			AvatarURL:     usr.AvatarURL,
		},
		Timestamp: now,
	}, nil
}

// Mark records attendance for (student, course) on today's UTC calendar day.
// The course is fetched before the authorization gate so a missing course
// surfaces as not-found rather than a false denial.
func (svc *service) Mark(ctx context.Context, actor user.User, ma MarkAttendance) (Attendance, bool, error) {
	crs, err := svc.courses.GetByID(ctx, ma.CourseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return Attendance{}, false, err
		}
		return Attendance{}, false, errors.Wrap(err, "finding course by ID")
	}

	if !auth.CanMarkAttendance(actor, crs) {
		return Attendance{}, false, auth.ErrForbidden
	}

	if ma.Status == "" {
		ma.Status = StatusPresent
	}

	now := NowFunc().UTC()
	today := DayOf(now)

	att, err := svc.repo.GetAttendanceForDay(ctx, ma.StudentID, ma.CourseID, today)
	switch errors.Cause(err) {
	case nil:
		return svc.update(ctx, att, ma.Status, actor.ID, now)
	case ErrNotFound:
		att = Attendance{
			StudentID:   ma.StudentID,
			CourseID:    ma.CourseID,
			ScannedByID: actor.ID,
			Status:      ma.Status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created, err := svc.repo.CreateAttendance(ctx, att)
		if err == nil {
			return created, true, nil
		}
		if errors.Cause(err) != ErrExists {
			return Attendance{}, false, errors.Wrap(err, "creating attendance")
		}
		// lost the race against another recorder; converge to an update
		att, err = svc.repo.GetAttendanceForDay(ctx, ma.StudentID, ma.CourseID, today)
		if err != nil {
			return Attendance{}, false, errors.Wrap(err, "re-fetching attendance after insert race")
		}
		return svc.update(ctx, att, ma.Status, actor.ID, now)
	default:
		return Attendance{}, false, errors.Wrap(err, "finding attendance for day")
	}
}

func (svc *service) update(ctx context.Context, att Attendance, status string, recorderID int, now time.Time) (Attendance, bool, error) {
	att.Status = status
	att.ScannedByID = recorderID
	att.UpdatedAt = now
	updated, err := svc.repo.UpdateAttendance(ctx, att)
	if err != nil {
		return Attendance{}, false, errors.Wrap(err, "updating attendance")
	}
	return updated, false, nil
}

// Query lists a course's attendance records, gated like Mark.
func (svc *service) Query(ctx context.Context, actor user.User, filter QueryFilter) ([]Attendance, error) {
	crs, err := svc.courses.GetByID(ctx, filter.CourseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return nil, err
		}
		return nil, errors.Wrap(err, "finding course by ID")
	}
	if !auth.CanMarkAttendance(actor, crs) {
		return nil, auth.ErrForbidden
	}
	if !filter.Day.IsZero() {
		filter.Day = DayOf(filter.Day)
	}
	return svc.repo.QueryAttendances(ctx, filter)
}
