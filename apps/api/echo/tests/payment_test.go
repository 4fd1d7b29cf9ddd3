package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"

	"github.com/epointy/backend/core/payment"
	"github.com/epointy/backend/core/user"
	testutil "github.com/epointy/backend/tests"
)

func TestPaymentAPI_deleteGuard(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Jane Admin", "jane@test.cd", "", user.RoleAdmin)
	direction := testutil.CreateUser(t, app.usrRepo, "Didi Dir", "didi@test.cd", "", user.RoleDirection)
	prof := testutil.CreateUser(t, app.usrRepo, "John Prof", "john@test.cd", "", user.RoleProf)
	student := testutil.CreateStudent(t, app.usrRepo, "Awa Traore", "awa@test.cd", "CS", "L2")

	pending := testutil.CreatePayment(t, app.pmtRepo, student.ID, "Tuition Q1", 150, payment.StatusPending)
	paid := testutil.CreatePayment(t, app.pmtRepo, student.ID, "Tuition Q2", 150, payment.StatusPaid)
	paid2 := testutil.CreatePayment(t, app.pmtRepo, student.ID, "Tuition Q3", 150, payment.StatusPaid)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{"prof cannot delete", "/v1/payments/" + itoa(pending.ID), app.getToken(t, prof), http.StatusForbidden},
		{"direction member cannot delete a PAID payment", "/v1/payments/" + itoa(paid.ID), app.getToken(t, direction), http.StatusForbidden},
		{"direction member deletes a PENDING payment", "/v1/payments/" + itoa(pending.ID), app.getToken(t, direction), http.StatusNoContent},
		{"admin deletes a PAID payment", "/v1/payments/" + itoa(paid2.ID), app.getToken(t, admin), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d; want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	// the guarded PAID payment survived; the others are gone
	ctx := context.Background()
	if _, err := app.pmtRepo.GetPaymentByID(ctx, paid.ID); err != nil {
		t.Errorf("guarded payment should still exist: %v", err)
	}
	if _, err := app.pmtRepo.GetPaymentByID(ctx, pending.ID); errors.Cause(err) != payment.ErrNotFound {
		t.Errorf("err = %v; want %v", err, payment.ErrNotFound)
	}
	if _, err := app.pmtRepo.GetPaymentByID(ctx, paid2.ID); errors.Cause(err) != payment.ErrNotFound {
		t.Errorf("err = %v; want %v", err, payment.ErrNotFound)
	}
}

func TestPaymentAPI_studentSeesOnlyTheirOwn(t *testing.T) {
	app := setup(t)

	direction := testutil.CreateUser(t, app.usrRepo, "Didi Dir", "didi@test.cd", "", user.RoleDirection)
	awa := testutil.CreateStudent(t, app.usrRepo, "Awa Traore", "awa@test.cd", "CS", "L2")
	ben := testutil.CreateStudent(t, app.usrRepo, "Ben Kalala", "ben@test.cd", "Math", "L1")

	awaPmt := testutil.CreatePayment(t, app.pmtRepo, awa.ID, "Tuition Q1", 150, payment.StatusPending)
	benPmt := testutil.CreatePayment(t, app.pmtRepo, ben.ID, "Tuition Q1", 150, payment.StatusLate)

	tests := []httpTest{
		{
			name:     "student lists only their own payments",
			token:    app.getToken(t, awa),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []payment.Payment{awaPmt}),
		},
		{
			name:     "staff lists all payments",
			token:    app.getToken(t, direction),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []payment.Payment{benPmt, awaPmt}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/payments", tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// a student cannot retrieve another student's payment
	req, rec := newAuthRequest(http.MethodGet, "/v1/payments/"+itoa(benPmt.ID), app.getToken(t, awa))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d; want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPaymentAPI_createDefaultsToPending(t *testing.T) {
	app := setup(t)

	direction := testutil.CreateUser(t, app.usrRepo, "Didi Dir", "didi@test.cd", "", user.RoleDirection)
	student := testutil.CreateStudent(t, app.usrRepo, "Awa Traore", "awa@test.cd", "CS", "L2")

	body := marshallObj(t, map[string]interface{}{
		"student_id": student.ID,
		"title":      "Tuition Q1",
		"amount":     150.0,
		"due_date":   "2021-04-30T00:00:00Z",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/payments", app.getToken(t, direction), body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d; want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	pmts, err := app.pmtRepo.QueryAllPayments(req.Context())
	if err != nil {
		t.Fatalf("QueryAllPayments() failed: %v", err)
	}
	if len(pmts) != 1 {
		t.Fatalf("got %d payments; want 1", len(pmts))
	}
	if pmts[0].Status != payment.StatusPending {
		t.Errorf("status = %q; want %q", pmts[0].Status, payment.StatusPending)
	}

	// zero or negative amounts are rejected
	body = marshallObj(t, map[string]interface{}{
		"student_id": student.ID,
		"title":      "Bogus",
		"amount":     -5.0,
		"due_date":   "2021-04-30T00:00:00Z",
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/payments", app.getToken(t, direction), body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d; want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}
