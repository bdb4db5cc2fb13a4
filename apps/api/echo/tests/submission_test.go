package tests

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/campusbridge/backend/core/submission"
	"github.com/campusbridge/backend/core/user"
	emailsvc "github.com/campusbridge/backend/services/email"
)

func Test_submissionApi_query(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	classmate := createUser(t, "Class", "Mate", "mate@test.cd", "", user.RoleStudent, true)
	outsider := createUser(t, "Out", "Sider", "out@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	slacker := createUser(t, "Sla", "Cker", "slacker@test.cd", "", user.RoleStudent, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID, classmate.ID, slacker.ID)
	due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	hw := createAssignment(t, crs.ID, "Homework 1", due, true)
	draft := createAssignment(t, crs.ID, "Homework 2", due, false)

	mine := createSubmission(t, hw.ID, student.ID, "my answer")
	theirs := createSubmission(t, hw.ID, classmate.ID, "their answer")

	path := "/v1/courses/" + crs.ID + "/assignments/" + hw.ID + "/submissions"

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown assignment is 404", path: "/v1/courses/" + crs.ID + "/assignments/lol/submissions",
			token:    getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Unenrolled student", path: path, token: getToken(t, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Unpublished assignment hidden from student", token: getToken(t, student),
			path:     "/v1/courses/" + crs.ID + "/assignments/" + draft.ID + "/submissions",
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Instructor sees all", path: path, token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: marchallList(t, mine, theirs),
		},
		{
			name: "Admin sees all", path: path, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, mine, theirs),
		},
		{
			name: "Student sees own only", path: path, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, mine),
		},
		{
			name: "Classmate sees own only", path: path, token: getToken(t, classmate),
			wantCode: http.StatusOK, wantData: marchallList(t, theirs),
		},
		{
			name: "Student with no submission gets empty list", path: path, token: getToken(t, slacker),
			wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_submit(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	outsider := createUser(t, "Out", "Sider", "out@test.cd", "", user.RoleStudent, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)
	due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	hw := createAssignment(t, crs.ID, "Homework 1", due, true)
	overdue := createAssignment(t, crs.ID, "Homework 0", time.Now().UTC().Add(-time.Hour), true)
	draft := createAssignment(t, crs.ID, "Homework 2", due, false)

	path := func(asgID string) string {
		return "/v1/courses/" + crs.ID + "/assignments/" + asgID + "/submissions"
	}
	body := marchallObj(t, submission.NewSubmission{Content: "my answer"})

	type want struct {
		status string
		isLate bool
	}

	tests := []httpTest{
		{
			name: "Instructor cannot submit", path: path(hw.ID), token: getToken(t, prof), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Unenrolled student cannot submit", path: path(hw.ID), token: getToken(t, outsider), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Unpublished assignment rejected", path: path(draft.ID), token: getToken(t, student), body: body,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Bad attachment rejected", path: path(hw.ID), token: getToken(t, student),
			body: marchallObj(t, submission.NewSubmission{
				Attachments: []submission.Attachment{{Name: "notes"}},
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Student submits", path: path(hw.ID), token: getToken(t, student), body: body,
			wantCode: http.StatusCreated, extra: want{status: submission.StatusSubmitted},
		},
		{
			name: "Resubmission overwrites", path: path(hw.ID), token: getToken(t, student),
			body:     marchallObj(t, submission.NewSubmission{Content: "revised answer"}),
			wantCode: http.StatusCreated, extra: want{status: submission.StatusResubmitted},
		},
		{
			name: "Late submission is flagged", path: path(overdue.ID), token: getToken(t, student), body: body,
			wantCode: http.StatusCreated, extra: want{status: submission.StatusSubmitted, isLate: true},
		},
	}

	var firstID string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			w, ok := tt.extra.(want)
			if !ok || rec.Code != http.StatusCreated {
				return
			}
			var got submission.Submission
			if err := unmarshalBody(rec, &got); err != nil {
				t.Fatalf("decoding response failed, %v", err)
			}
			if got.Status != w.status {
				t.Errorf("status = %s; want %s", got.Status, w.status)
			}
			if got.IsLate != w.isLate {
				t.Errorf("isLate = %v; want %v", got.IsLate, w.isLate)
			}
			if w.status == submission.StatusSubmitted && !got.IsLate {
				firstID = got.ID
			}
			if w.status == submission.StatusResubmitted {
				if got.ID != firstID {
					t.Errorf("resubmission id = %s; want the original %s", got.ID, firstID)
				}
				if got.Content != "revised answer" {
					t.Errorf("content = %q; want the revised content", got.Content)
				}
			}
		})
	}
}

func Test_submissionApi_retrieve(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	classmate := createUser(t, "Class", "Mate", "mate@test.cd", "", user.RoleStudent, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID, classmate.ID)
	due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	hw := createAssignment(t, crs.ID, "Homework 1", due, true)
	sub := createSubmission(t, hw.ID, student.ID, "my answer")

	path := "/v1/courses/" + crs.ID + "/assignments/" + hw.ID + "/submissions/"

	tests := []httpTest{
		{
			name: "Unknown submission is 404", path: path + "lol", token: getToken(t, prof),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Owner reads own", path: path + sub.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, sub),
		},
		{
			name: "Classmate cannot read", path: path + sub.ID, token: getToken(t, classmate),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Instructor reads", path: path + sub.ID, token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: marchallObj(t, sub),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_grade(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)
	due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	hw := createAssignment(t, crs.ID, "Homework 1", due, true) // out of 100
	sub := createSubmission(t, hw.ID, student.ID, "my answer")

	path := "/v1/courses/" + crs.ID + "/assignments/" + hw.ID + "/submissions/" + sub.ID + "/grade"
	iPtr := func(i int) *int { return &i }

	tests := []httpTest{
		{
			name: "Student cannot grade", token: getToken(t, student),
			body:     marchallObj(t, submission.GradeSubmission{Points: iPtr(80)}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Points required", token: getToken(t, prof),
			body:     marchallObj(t, submission.GradeSubmission{}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Points above scale rejected", token: getToken(t, prof),
			body:     marchallObj(t, submission.GradeSubmission{Points: iPtr(101)}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "InvalidGradeRange"}),
		},
		{
			name: "Negative points rejected", token: getToken(t, prof),
			body:     marchallObj(t, submission.GradeSubmission{Points: iPtr(-1)}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "InvalidGradeRange"}),
		},
		{
			name: "Full marks are within range", token: getToken(t, prof),
			body:     marchallObj(t, submission.GradeSubmission{Points: iPtr(100), Feedback: "perfect"}),
			wantCode: http.StatusOK, extra: 100,
		},
		{
			name: "Instructor grades", token: getToken(t, prof),
			body:     marchallObj(t, submission.GradeSubmission{Points: iPtr(85), Feedback: "good work"}),
			wantCode: http.StatusOK, extra: 85,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentBefore := len(emailsvc.SentMessages)

			req, rec := newAuthRequest(http.MethodPut, path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			wantPoints, ok := tt.extra.(int)
			if !ok || rec.Code != http.StatusOK {
				return
			}
			var got submission.Submission
			if err := unmarshalBody(rec, &got); err != nil {
				t.Fatalf("decoding response failed, %v", err)
			}
			if got.Status != submission.StatusGraded {
				t.Errorf("status = %s; want %s", got.Status, submission.StatusGraded)
			}
			if got.Grade == nil || got.Grade.Points != wantPoints {
				t.Errorf("grade = %+v; want %d points", got.Grade, wantPoints)
			}
			if got.Grade != nil && got.Grade.GradedBy != prof.ID {
				t.Errorf("gradedBy = %s; want %s", got.Grade.GradedBy, prof.ID)
			}

			// the student is notified
			if len(emailsvc.SentMessages) != sentBefore+1 {
				t.Fatalf("sent messages = %d; want %d", len(emailsvc.SentMessages), sentBefore+1)
			}
			msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
			if !strings.Contains(msg.Subject, hw.Title) {
				t.Errorf("mail subject = %q; want it to name %q", msg.Subject, hw.Title)
			}
			if msg.To[0].Address != student.Email {
				t.Errorf("mail to = %s; want %s", msg.To[0].Address, student.Email)
			}
		})
	}
}
