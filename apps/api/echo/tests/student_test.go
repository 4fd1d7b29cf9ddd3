package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/epointy/backend/core/attendance"
	"github.com/epointy/backend/core/user"
	testutil "github.com/epointy/backend/tests"
)

func mockScanClock(t *testing.T, at time.Time) {
	orig := attendance.NowFunc
	attendance.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { attendance.NowFunc = orig })
}

func TestStudentAPI_scan(t *testing.T) {
	app := setup(t)
	now := time.Date(2021, 3, 15, 9, 30, 0, 0, time.UTC)
	mockScanClock(t, now)

	admin := testutil.CreateUser(t, app.usrRepo, "Jane Admin", "jane@test.cd", "", user.RoleAdmin)
	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)
	direction := testutil.CreateUser(t, app.usrRepo, "Didi Dir", "didi@test.cd", "", user.RoleDirection)
	student := testutil.CreateStudent(t, app.usrRepo, "Awa Traore", "awa@test.cd", "CS", "L2")

	tests := []httpTest{
		{
			name:     "anonymous is rejected",
			path:     "/v1/students/" + student.StudentUUID,
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "direction member cannot scan",
			path:     "/v1/students/" + student.StudentUUID,
			token:    app.getToken(t, direction),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "student cannot scan",
			path:     "/v1/students/" + student.StudentUUID,
			token:    app.getToken(t, student),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "prof resolves a known code",
			path:     "/v1/students/" + student.StudentUUID,
			token:    app.getToken(t, prof),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, attendance.ScanResult{
				Valid: true,
				Student: &attendance.StudentProfile{
					ID:            student.ID,
					Name:          student.Name,
					Major:         student.Major,
					Level:         student.Level,
					PaymentStatus: student.PaymentStatus,
					AvatarURL:     student.AvatarURL,
				},
				Timestamp: now,
			}),
		},
		{
			name:     "unknown code is a 200 miss, not an error",
			path:     "/v1/students/b2fdbc44-0000-0000-0000-000000000000",
			token:    app.getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, attendance.ScanResult{
				Valid:     false,
				Message:   "unknown student or invalid code",
				Timestamp: now,
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestStudentAPI_createAndList(t *testing.T) {
	app := setup(t)
	direction := testutil.CreateUser(t, app.usrRepo, "Didi Dir", "didi@test.cd", "", user.RoleDirection)
	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)

	body := marshallObj(t, map[string]string{
		"name":  "Awa Traore",
		"email": "awa@test.cd",
		"major": "CS",
		"level": "L2",
	})

	// a prof cannot enroll students
	req, rec := newAuthRequest(http.MethodPost, "/v1/students", app.getToken(t, prof), body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusForbidden)
	}

	// a direction member can
	req, rec = newAuthRequest(http.MethodPost, "/v1/students", app.getToken(t, direction), body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	students, err := app.usrRepo.QueryStudents(req.Context())
	if err != nil {
		t.Fatalf("QueryStudents() failed: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("got %d students; want 1", len(students))
	}
	if students[0].StudentUUID == "" {
		t.Error("enrolled student should be issued a scan code")
	}

	// re-enrolling the same email is rejected and creates nothing
	req, rec = newAuthRequest(http.MethodPost, "/v1/students", app.getToken(t, direction), body)
	app.server.ServeHTTP(rec, req)
	dup := httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
	}
	checkCodeAndData(t, dup, rec)
	students, err = app.usrRepo.QueryStudents(req.Context())
	if err != nil {
		t.Fatalf("QueryStudents() failed: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("got %d students after duplicate enrollment; want 1", len(students))
	}

	tt := httpTest{
		token:    app.getToken(t, direction),
		wantCode: http.StatusOK,
		wantData: marshallObj(t, students),
	}
	req, rec = newAuthRequest(http.MethodGet, "/v1/students", tt.token)
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func TestStudentAPI_badge(t *testing.T) {
	app := setup(t)
	direction := testutil.CreateUser(t, app.usrRepo, "Didi Dir", "didi@test.cd", "", user.RoleDirection)
	student := testutil.CreateStudent(t, app.usrRepo, "Awa Traore", "awa@test.cd", "CS", "L2")

	req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+student.StudentUUID+"/badge", app.getToken(t, direction))
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q; want image/png", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("badge body should not be empty")
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/students/b2fdbc44-0000-0000-0000-000000000000/badge", app.getToken(t, direction))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusNotFound)
	}
}
