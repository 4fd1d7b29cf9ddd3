package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/epointy/backend/apps/api/echo"
	"github.com/epointy/backend/core"
	"github.com/epointy/backend/core/attendance"
	"github.com/epointy/backend/core/course"
	"github.com/epointy/backend/core/payment"
	"github.com/epointy/backend/core/stats"
	"github.com/epointy/backend/core/user"
	emailsvc "github.com/epointy/backend/services/email"
	logsvc "github.com/epointy/backend/services/logger"
	qrsvc "github.com/epointy/backend/services/qr"
	inmemdb "github.com/epointy/backend/storage/database/inmem"
	testutil "github.com/epointy/backend/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	conf   *core.Config
	server Server

	usrRepo user.Repository
	crsRepo course.Repository
	pmtRepo payment.Repository
	attRepo attendance.Repository
}

func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig(t)

	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	pmtRepo := inmemdb.NewPaymentRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	badgeSvc := qrsvc.NewBadgeService()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	usrSvc := user.NewService(conf, usrRepo, mailSvc, badgeSvc)
	crsSvc := course.NewService(crsRepo)
	pmtSvc := payment.NewService(pmtRepo)
	attSvc := attendance.NewService(attRepo, usrSvc, crsSvc)
	statsSvc := stats.NewService(statsStub{})

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	server := NewServer(
		&Options{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			CourseSvc:      crsSvc,
			PaymentSvc:     pmtSvc,
			AttendanceSvc:  attSvc,
			StatsSvc:       statsSvc,
			Badge:          badgeSvc,
			Validate:       validate,
			Translator:     translator,
		},
	)

	return &testApp{
		conf:    conf,
		server:  server,
		usrRepo: usrRepo,
		crsRepo: crsRepo,
		pmtRepo: pmtRepo,
		attRepo: attRepo,
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(app.conf, usr)
	token, err := GenerateToken(app.conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func itoa(i int) string { return strconv.Itoa(i) }

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// statsStub is a fixed-number stats source; the SQL aggregation itself lives
// in the storage layer.
type statsStub struct{}

func (statsStub) CountStudents(context.Context) (int, error) { return 42, nil }
func (statsStub) CountCourses(context.Context) (int, error) { return 7, nil }
func (statsStub) SumPendingDues(context.Context) (float64, error) { return 1500, nil }
func (statsStub) MonthlyRevenue(context.Context, time.Time) (map[string]float64, error) {
	return map[string]float64{"2021-03": 300}, nil
}
func (statsStub) MonthlyAttendanceRate(context.Context, time.Time) (map[string]float64, error) {
	return map[string]float64{"2021-03": 85}, nil
}
