package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/epointy/backend/core/course"
	"github.com/epointy/backend/core/user"
	testutil "github.com/epointy/backend/tests"
)

func TestCourseAPI_create(t *testing.T) {
	app := setup(t)

	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)
	direction := testutil.CreateUser(t, app.usrRepo, "Didi Dir", "didi@test.cd", "", user.RoleDirection)

	body := marshallObj(t, map[string]interface{}{
		"title":    "Algorithms",
		"code":     "CS201",
		"schedule": "Mon 08:00-10:00",
	})

	// a direction member cannot create courses
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses", app.getToken(t, direction), body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusForbidden)
	}

	// a prof can, and owns what they create
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses", app.getToken(t, prof), body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var crs course.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if crs.ProfessorID != prof.ID {
		t.Errorf("professor_id = %d; want %d", crs.ProfessorID, prof.ID)
	}

	// a prof cannot assign another owner
	body = marshallObj(t, map[string]interface{}{
		"title":        "Calculus",
		"code":         "MA101",
		"schedule":     "Tue 10:00-12:00",
		"professor_id": 999,
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses", app.getToken(t, prof), body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if crs.ProfessorID != prof.ID {
		t.Errorf("professor_id = %d; want acting prof %d", crs.ProfessorID, prof.ID)
	}
}

func TestCourseAPI_editIsOwnerOrAdmin(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Jane Admin", "jane@test.cd", "", user.RoleAdmin)
	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)
	otherProf := testutil.CreateUser(t, app.usrRepo, "Jim Prof", "jim@test.cd", "", user.RoleProf)
	crs := testutil.CreateCourse(t, app.crsRepo, "Algorithms", "CS201", prof.ID)

	body := marshallObj(t, map[string]string{"title": "Algorithms II"})

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{"non-owning prof cannot edit", app.getToken(t, otherProf), http.StatusForbidden},
		{"owning prof edits", app.getToken(t, prof), http.StatusOK},
		{"admin edits any course", app.getToken(t, admin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+itoa(crs.ID), tt.token, body)
			app.server.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d; want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	// deletion follows the same gate
	req, rec := newAuthRequest(http.MethodDelete, "/v1/courses/"+itoa(crs.ID), app.getToken(t, otherProf))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusForbidden)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/courses/"+itoa(crs.ID), app.getToken(t, prof))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusNoContent)
	}
}

func TestCourseAPI_queryByProfessor(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Jane Admin", "jane@test.cd", "", user.RoleAdmin)
	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)
	otherProf := testutil.CreateUser(t, app.usrRepo, "Jim Prof", "jim@test.cd", "", user.RoleProf)
	crs := testutil.CreateCourse(t, app.crsRepo, "Algorithms", "CS201", prof.ID)
	other := testutil.CreateCourse(t, app.crsRepo, "Calculus", "MA101", otherProf.ID)

	tests := []httpTest{
		{
			name:     "a prof only sees their own courses",
			path:     "/v1/courses",
			token:    app.getToken(t, prof),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []course.Course{crs}),
		},
		{
			name:     "an admin sees everything",
			path:     "/v1/courses",
			token:    app.getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []course.Course{crs, other}),
		},
		{
			name:     "an admin can filter by professor",
			path:     "/v1/courses?professor_id=" + itoa(otherProf.ID),
			token:    app.getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []course.Course{other}),
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
