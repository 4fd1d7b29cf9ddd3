package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/epointy/backend/core/user"
	testutil "github.com/epointy/backend/tests"
)

func TestLogin(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Jane Admin", "jane@test.cd", "LordOfTheRings", user.RoleAdmin)

	req, rec := newRequest(http.MethodPost, "/v1/users/login",
		marshallObj(t, map[string]string{"email": usr.Email, "password": "LordOfTheRings"}))
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d; want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var res struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if res.Token == "" {
		t.Error("login should return a token")
	}
	if res.User.ID != usr.ID || res.User.Email != usr.Email {
		t.Errorf("login should return the authenticated user; got %+v", res.User)
	}

	// a successful login updates last_login
	fresh, err := app.usrRepo.GetUserByID(req.Context(), usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if fresh.LastLogin.IsZero() {
		t.Error("login should set last_login")
	}
}

func TestLogin_failures(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Jane Admin", "jane@test.cd", "LordOfTheRings", user.RoleAdmin)

	tests := []httpTest{
		{
			name:     "unknown email fails",
			body:     marshallObj(t, map[string]string{"email": "ghost@test.cd", "password": "LordOfTheRings"}),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password fails",
			body:     marshallObj(t, map[string]string{"email": "jane@test.cd", "password": "nope"}),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "missing fields fail",
			body:     marshallObj(t, map[string]string{}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserAPI_adminGate(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.usrRepo, "Jane Admin", "jane@test.cd", "", user.RoleAdmin)
	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)

	tests := []httpTest{
		{
			name:     "anonymous is rejected",
			method:   http.MethodGet,
			path:     "/v1/users",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "prof cannot list users",
			method:   http.MethodGet,
			path:     "/v1/users",
			token:    app.getToken(t, prof),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "admin lists users",
			method:   http.MethodGet,
			path:     "/v1/users",
			token:    app.getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []user.User{admin, prof}),
		},
		{
			name:     "admin lists roles",
			method:   http.MethodGet,
			path:     "/v1/users/roles",
			token:    app.getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, user.AllRoles),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserAPI_me(t *testing.T) {
	app := setup(t)
	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)

	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", app.getToken(t, prof))
	app.server.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, prof)}
	checkCodeAndData(t, tt, rec)
}

func TestUserAPI_selfDeleteForbidden(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.usrRepo, "Jane Admin", "jane@test.cd", "", user.RoleAdmin)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/users/1", app.getToken(t, admin))
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusForbidden)
	}
	if _, err := app.usrRepo.GetUserByID(req.Context(), admin.ID); err != nil {
		t.Errorf("admin should still exist: %v", err)
	}
}
