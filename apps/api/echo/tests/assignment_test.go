package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/campusbridge/backend/core/assignment"
	"github.com/campusbridge/backend/core/submission"
	"github.com/campusbridge/backend/core/user"
)

func Test_assignmentApi_query(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	outsider := createUser(t, "Out", "Sider", "out@test.cd", "", user.RoleStudent, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)
	due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	hw1 := createAssignment(t, crs.ID, "Homework 1", due, true)
	hw2 := createAssignment(t, crs.ID, "Homework 2", due, false)

	path := "/v1/courses/" + crs.ID + "/assignments"

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unenrolled student", path: path, token: getToken(t, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Instructor sees unpublished", path: path, token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: marchallList(t, hw1, hw2),
		},
		{
			name: "Student sees published only", path: path, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, hw1),
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

func Test_assignmentApi_write(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)
	due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	hw := createAssignment(t, crs.ID, "Homework 1", due, true)
	sub := createSubmission(t, hw.ID, student.ID, "my answer")

	path := "/v1/courses/" + crs.ID + "/assignments"

	tests := []httpTest{
		{
			name: "create: student cannot", method: http.MethodPost, path: path, token: getToken(t, student),
			body:     marchallObj(t, assignment.NewAssignment{Title: "Homework 2", DueDate: due}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "create: due date required", method: http.MethodPost, path: path, token: getToken(t, prof),
			body:     marchallObj(t, assignment.NewAssignment{Title: "Homework 2"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "create: bad submission type rejected", method: http.MethodPost, path: path, token: getToken(t, prof),
			body:     marchallObj(t, assignment.NewAssignment{Title: "Homework 2", DueDate: due, SubmissionType: "lol"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "create: instructor creates with defaults", method: http.MethodPost, path: path, token: getToken(t, prof),
			body:     marchallObj(t, assignment.NewAssignment{Title: "Homework 2", DueDate: due}),
			wantCode: http.StatusCreated, extra: assignment.DefaultPointsPossible,
		},
		{
			name: "update: student cannot", method: http.MethodPut, path: path + "/" + hw.ID, token: getToken(t, student),
			body:     marchallObj(t, assignment.UpdateAssignment{Title: "Homework 1b"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "update: instructor rescales", method: http.MethodPut, path: path + "/" + hw.ID, token: getToken(t, prof),
			body:     marchallObj(t, assignment.UpdateAssignment{PointsPossible: 50}),
			wantCode: http.StatusOK, extra: 50,
		},
		{
			name: "destroy: student cannot", method: http.MethodDelete, path: path + "/" + hw.ID, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "destroy: admin deletes", method: http.MethodDelete, path: path + "/" + hw.ID, token: getToken(t, admin),
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if wantPoints, ok := tt.extra.(int); ok && rec.Code < http.StatusBadRequest {
				var got assignment.Assignment
				if err := unmarshalBody(rec, &got); err != nil {
					t.Fatalf("decoding response failed, %v", err)
				}
				if got.PointsPossible != wantPoints {
					t.Errorf("pointsPossible = %d; want %d", got.PointsPossible, wantPoints)
				}
			}
		})
	}

	// submissions go with the assignment
	if _, err := subRepo.GetSubmission(context.Background(), sub.ID); err != submission.ErrNotFound {
		t.Errorf("GetSubmission() after assignment delete; err = %v, want %v", err, submission.ErrNotFound)
	}
}
