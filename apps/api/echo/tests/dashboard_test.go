package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/epointy/backend/core/stats"
	"github.com/epointy/backend/core/user"
	testutil "github.com/epointy/backend/tests"
)

func TestStatsAPI_direction(t *testing.T) {
	app := setup(t)

	origNow := stats.NowFunc
	stats.NowFunc = func() time.Time { return time.Date(2021, 3, 20, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { stats.NowFunc = origNow })

	direction := testutil.CreateUser(t, app.usrRepo, "Didi Dir", "didi@test.cd", "", user.RoleDirection)
	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)

	// the stub covers 2020-10 through 2021-03 with data only in 2021-03
	want := stats.Overview{
		StudentCount: 42,
		CourseCount:  7,
		PendingDues:  1500,
		Monthly: []stats.MonthlyMetric{
			{Month: "2020-10"},
			{Month: "2020-11"},
			{Month: "2020-12"},
			{Month: "2021-01"},
			{Month: "2021-02"},
			{Month: "2021-03", Revenue: 300, AttendanceRate: 85},
		},
	}

	tests := []httpTest{
		{
			name:     "prof cannot view the dashboard",
			token:    app.getToken(t, prof),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "direction member views the dashboard",
			token:    app.getToken(t, direction),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, want),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/stats/direction", tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
