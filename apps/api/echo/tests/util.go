package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/campusbridge/backend/apps/api/echo"
	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/assignment"
	"github.com/campusbridge/backend/core/attendance"
	"github.com/campusbridge/backend/core/course"
	"github.com/campusbridge/backend/core/material"
	"github.com/campusbridge/backend/core/submission"
	"github.com/campusbridge/backend/core/user"
	emailsvc "github.com/campusbridge/backend/services/email"
	dummydb "github.com/campusbridge/backend/storage/database/dummy"
)

var (
	conf *core.Config

	usrRepo user.Repository
	crsRepo course.Repository
	matRepo material.Repository
	asgRepo assignment.Repository
	subRepo submission.Repository
	attRepo attendance.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func setup(t *testing.T) Server {
	conf = &core.Config{
		AppName:          "CampusBridge",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        []byte("s3cr3t-t3st-k3y"),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Address: "noreply@test.cd"},

		PasswordResetTimeoutDelta: time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
	}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	crsRepo = dummydb.NewCourseRepository(db)
	matRepo = dummydb.NewMaterialRepository(db)
	asgRepo = dummydb.NewAssignmentRepository(db)
	subRepo = dummydb.NewSubmissionRepository(db)
	attRepo = dummydb.NewAttendanceRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	crsSvc := course.NewService(crsRepo, usrSvc)
	matSvc := material.NewService(matRepo)
	asgSvc := assignment.NewService(asgRepo)
	subSvc := submission.NewService(subRepo, usrSvc, mailSvc, conf)
	attSvc := attendance.NewService(attRepo)

	validate := validator.New()
	translator := newTranslator(t)
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	material.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, nopLogger{})

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         nopLogger{},
			Validate:       validate,
			Translator:     translator,
			UserSvc:        usrSvc,
			CourseSvc:      crsSvc,
			MaterialSvc:    matSvc,
			AssignmentSvc:  asgSvc,
			SubmissionSvc:  subSvc,
			AttendanceSvc:  attSvc,
			SignalShutdown: func() {},
		},
	)
}

func newTranslator(t *testing.T) ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, ok := uni.GetTranslator("en")
	if !ok {
		t.Fatal("newTranslator() failed")
	}
	return translator
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// Fixtures

func createUser(t *testing.T, fname, lname, email, pwd, role string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		FirstName: fname,
		LastName:  lname,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword() failed, %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
}

func createCourse(t *testing.T, title, code, instructorID string, studentIDs ...string) course.Course {
	t.Helper()
	now := time.Now().UTC()
	if studentIDs == nil {
		studentIDs = []string{}
	}
	crs := course.Course{
		Title:        title,
		Code:         code,
		Credits:      3,
		InstructorID: instructorID,
		StudentIDs:   studentIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	crs.SetActive(true)
	crs, err := crsRepo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed, %v", err)
	}
	return crs
}

func createMaterial(t *testing.T, courseID, title string, published bool) material.Material {
	t.Helper()
	now := time.Now().UTC()
	mat := material.Material{
		CourseID:  courseID,
		Title:     title,
		Type:      material.TypeDocument,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mat.SetPublished(published)
	mat, err := matRepo.CreateMaterial(context.Background(), mat)
	if err != nil {
		t.Fatalf("CreateMaterial() failed, %v", err)
	}
	return mat
}

func createAssignment(t *testing.T, courseID, title string, due time.Time, published bool) assignment.Assignment {
	t.Helper()
	now := time.Now().UTC()
	asg := assignment.Assignment{
		CourseID:       courseID,
		Title:          title,
		DueDate:        due,
		PointsPossible: assignment.DefaultPointsPossible,
		SubmissionType: assignment.SubmissionTypeText,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	asg.SetPublished(published)
	asg, err := asgRepo.CreateAssignment(context.Background(), asg)
	if err != nil {
		t.Fatalf("CreateAssignment() failed, %v", err)
	}
	return asg
}

func createSubmission(t *testing.T, assignmentID, studentID, content string) submission.Submission {
	t.Helper()
	now := time.Now().UTC()
	sub := submission.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      content,
		Attachments:  []submission.Attachment{},
		Status:       submission.StatusSubmitted,
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sub, err := subRepo.CreateSubmission(context.Background(), sub)
	if err != nil {
		t.Fatalf("CreateSubmission() failed, %v", err)
	}
	return sub
}

func createAttendance(t *testing.T, courseID string, day time.Time, recordedBy string, entries ...attendance.Entry) attendance.Record {
	t.Helper()
	now := time.Now().UTC()
	rec := attendance.Record{
		CourseID:   courseID,
		Date:       attendance.DayOf(day),
		Entries:    entries,
		RecordedBy: recordedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	rec, err := attRepo.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateRecord() failed, %v", err)
	}
	return rec
}

// HTTP helpers

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
	extra    interface{}
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

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr, conf)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshalBody(rec *httptest.ResponseRecorder, obj interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), obj)
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
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
