package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/epointy/backend/core/attendance"
	"github.com/epointy/backend/core/auth"
	"github.com/epointy/backend/core/course"
	"github.com/epointy/backend/core/user"
	inmemdb "github.com/epointy/backend/storage/database/inmem"
	testutil "github.com/epointy/backend/tests"
)

type fixture struct {
	svc     attendance.Service
	attRepo attendance.Repository

	prof      user.User
	otherProf user.User
	student   user.User
	course    course.Course
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)

	prof := testutil.CreateUser(t, usrRepo, "Prof Jones", "jones@test.cd", "", user.RoleProf)
	otherProf := testutil.CreateUser(t, usrRepo, "Prof Smith", "smith@test.cd", "", user.RoleProf)
	student := testutil.CreateStudent(t, usrRepo, "Awa Traore", "awa@test.cd", "CS", "L2")
	crs := testutil.CreateCourse(t, crsRepo, "Algorithms", "CS201", prof.ID)

	return fixture{
		svc:       attendance.NewService(attRepo, usrRepo, course.NewService(crsRepo)),
		attRepo:   attRepo,
		prof:      prof,
		otherProf: otherProf,
		student:   student,
		course:    crs,
	}
}

func mockNow(t *testing.T, at time.Time) {
	orig := attendance.NowFunc
	attendance.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { attendance.NowFunc = orig })
}

func TestResolveScan(t *testing.T) {
	f := setup(t)
	now := time.Date(2021, 3, 15, 9, 30, 0, 0, time.UTC)
	mockNow(t, now)
	ctx := context.Background()

	res, err := f.svc.ResolveScan(ctx, f.student.StudentUUID)
	if err != nil {
		t.Fatalf("ResolveScan() failed: %v", err)
	}
	if !res.Valid {
		t.Error("known code should resolve to a valid result")
	}
	if res.Student == nil || res.Student.ID != f.student.ID {
		t.Errorf("student = %+v; want ID %d", res.Student, f.student.ID)
	}
	if res.Student.PaymentStatus != user.DefaultPaymentStatus {
		t.Errorf("payment status = %q; want %q", res.Student.PaymentStatus, user.DefaultPaymentStatus)
	}
	if !res.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v; want %v", res.Timestamp, now)
	}

	// an unknown code is a miss, not an error
	res, err = f.svc.ResolveScan(ctx, "b2fdbc44-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("ResolveScan() failed: %v", err)
	}
	if res.Valid {
		t.Error("unknown code should resolve to an invalid result")
	}
	if res.Student != nil {
		t.Errorf("student = %+v; want nil", res.Student)
	}
	if res.Message == "" {
		t.Error("invalid result should carry a message")
	}
}

func TestMark_upsertsPerDay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	morning := time.Date(2021, 3, 15, 8, 0, 0, 0, time.UTC)
	mockNow(t, morning)

	ma := attendance.MarkAttendance{StudentID: f.student.ID, CourseID: f.course.ID}
	att, created, err := f.svc.Mark(ctx, f.prof, ma)
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	if !created {
		t.Error("first mark of the day should create a record")
	}
	if att.Status != attendance.StatusPresent {
		t.Errorf("status = %q; want default %q", att.Status, attendance.StatusPresent)
	}
	if att.ScannedByID != f.prof.ID {
		t.Errorf("scanned_by = %d; want %d", att.ScannedByID, f.prof.ID)
	}

	// marking again the same day updates the record in place
	evening := time.Date(2021, 3, 15, 17, 45, 0, 0, time.UTC)
	mockNow(t, evening)
	ma.Status = attendance.StatusAbsent
	att2, created, err := f.svc.Mark(ctx, f.prof, ma)
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	if created {
		t.Error("second mark of the day should update, not create")
	}
	if att2.ID != att.ID {
		t.Errorf("record ID = %d; want %d", att2.ID, att.ID)
	}
	if att2.Status != attendance.StatusAbsent {
		t.Errorf("status = %q; want %q", att2.Status, attendance.StatusAbsent)
	}

	// the next day starts a fresh record
	nextDay := time.Date(2021, 3, 16, 0, 5, 0, 0, time.UTC)
	mockNow(t, nextDay)
	ma.Status = ""
	att3, created, err := f.svc.Mark(ctx, f.prof, ma)
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	if !created {
		t.Error("first mark of a new day should create a record")
	}
	if att3.ID == att.ID {
		t.Error("new day should not reuse the previous day's record")
	}
}

func TestMark_authorization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ma := attendance.MarkAttendance{StudentID: f.student.ID, CourseID: f.course.ID}

	if _, _, err := f.svc.Mark(ctx, f.otherProf, ma); errors.Cause(err) != auth.ErrForbidden {
		t.Errorf("err = %v; want %v", err, auth.ErrForbidden)
	}
	if _, _, err := f.svc.Mark(ctx, f.student, ma); errors.Cause(err) != auth.ErrForbidden {
		t.Errorf("err = %v; want %v", err, auth.ErrForbidden)
	}

	admin := user.User{ID: 99, Role: user.RoleAdmin}
	if _, _, err := f.svc.Mark(ctx, admin, ma); err != nil {
		t.Errorf("admin Mark() failed: %v", err)
	}
}

func TestMark_courseNotFound(t *testing.T) {
	f := setup(t)
	ma := attendance.MarkAttendance{StudentID: f.student.ID, CourseID: 404}

	_, _, err := f.svc.Mark(context.Background(), f.prof, ma)
	if errors.Cause(err) != course.ErrNotFound {
		t.Errorf("err = %v; want %v", err, course.ErrNotFound)
	}
}

// racingRepo simulates another recorder winning the insert race: the first
// lookup misses even though the insert will collide.
type racingRepo struct {
	attendance.Repository
	missed bool
}

func (r *racingRepo) GetAttendanceForDay(ctx context.Context, studentID, courseID int, day time.Time) (attendance.Attendance, error) {
	if !r.missed {
		r.missed = true
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	return r.Repository.GetAttendanceForDay(ctx, studentID, courseID, day)
}

func TestMark_insertRaceConvergesToUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Date(2021, 3, 15, 8, 0, 0, 0, time.UTC)
	mockNow(t, now)

	// the "other recorder" already wrote today's record
	existing := testutil.CreateAttendance(t, f.attRepo, f.student.ID, f.course.ID, f.prof.ID, attendance.StatusPresent, now)

	svc := attendance.NewService(&racingRepo{Repository: f.attRepo}, nil, courseGetterFunc(func(ctx context.Context, id int) (course.Course, error) {
		return f.course, nil
	}))

	ma := attendance.MarkAttendance{StudentID: f.student.ID, CourseID: f.course.ID, Status: attendance.StatusAbsent}
	att, created, err := svc.Mark(ctx, f.prof, ma)
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	if created {
		t.Error("losing the insert race should converge to an update")
	}
	if att.ID != existing.ID {
		t.Errorf("record ID = %d; want %d", att.ID, existing.ID)
	}
	if att.Status != attendance.StatusAbsent {
		t.Errorf("status = %q; want %q", att.Status, attendance.StatusAbsent)
	}
}

type courseGetterFunc func(ctx context.Context, id int) (course.Course, error)

func (f courseGetterFunc) GetByID(ctx context.Context, id int) (course.Course, error) {
	return f(ctx, id)
}

func TestQuery(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	d1 := time.Date(2021, 3, 15, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2021, 3, 16, 8, 0, 0, 0, time.UTC)
	testutil.CreateAttendance(t, f.attRepo, f.student.ID, f.course.ID, f.prof.ID, attendance.StatusPresent, d1)
	testutil.CreateAttendance(t, f.attRepo, f.student.ID, f.course.ID, f.prof.ID, attendance.StatusAbsent, d2)

	atts, err := f.svc.Query(ctx, f.prof, attendance.QueryFilter{CourseID: f.course.ID})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(atts) != 2 {
		t.Errorf("got %d records; want 2", len(atts))
	}

	atts, err = f.svc.Query(ctx, f.prof, attendance.QueryFilter{CourseID: f.course.ID, Day: d1})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(atts) != 1 {
		t.Fatalf("got %d records; want 1", len(atts))
	}
	if atts[0].Status != attendance.StatusPresent {
		t.Errorf("status = %q; want %q", atts[0].Status, attendance.StatusPresent)
	}

	if _, err = f.svc.Query(ctx, f.otherProf, attendance.QueryFilter{CourseID: f.course.ID}); errors.Cause(err) != auth.ErrForbidden {
		t.Errorf("err = %v; want %v", err, auth.ErrForbidden)
	}
}
