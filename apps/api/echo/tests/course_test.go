package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/campusbridge/backend/core/course"
	"github.com/campusbridge/backend/core/user"
)

func Test_courseApi_query(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	otherProf := createUser(t, "John", "Prof", "prof2@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	algo := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)
	db := createCourse(t, "Databases", "cs201", prof.ID)
	chem := createCourse(t, "Chemistry", "ch101", otherProf.ID)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/courses", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin sees all", path: "/v1/courses", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, algo, db, chem),
		},
		{
			name: "Faculty sees own courses", path: "/v1/courses", token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: marchallList(t, algo, db),
		},
		{
			name: "Student sees enrolled courses", path: "/v1/courses", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, algo),
		},
		{
			name: "Student with no enrollment sees none", path: "/v1/courses", token: getToken(t, createUser(t, "New", "Kid", "kid@test.cd", "", user.RoleStudent, true)),
			wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...),
		},
		{
			name: "search", path: "/v1/courses?search=data", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, db),
		},
		{
			name: "instructor filter", path: "/v1/courses?instructor=" + otherProf.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, chem),
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

func Test_courseApi_retrieve(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	otherProf := createUser(t, "John", "Prof", "prof2@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	outsider := createUser(t, "Out", "Sider", "out@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/courses/" + crs.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown course is 404", path: "/v1/courses/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Admin", path: "/v1/courses/" + crs.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, crs),
		},
		{
			name: "Instructor", path: "/v1/courses/" + crs.ID, token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: marchallObj(t, crs),
		},
		{
			name: "Enrolled student", path: "/v1/courses/" + crs.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, crs),
		},
		{
			name: "Unenrolled student", path: "/v1/courses/" + crs.ID, token: getToken(t, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Other faculty", path: "/v1/courses/" + crs.ID, token: getToken(t, otherProf),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
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

func Test_courseApi_create(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	createCourse(t, "Algorithms", "cs101", prof.ID)

	tests := []httpTest{
		{
			name: "Student cannot create", token: getToken(t, student),
			body:     marchallObj(t, course.NewCourse{Title: "Hacking", Code: "hk101"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Faculty cannot assign another instructor", token: getToken(t, prof),
			body:     marchallObj(t, course.NewCourse{Title: "Databases", Code: "cs201", InstructorID: admin.ID}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Duplicate code rejected", token: getToken(t, prof),
			body:     marchallObj(t, course.NewCourse{Title: "Algorithms II", Code: "cs101"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Title required", token: getToken(t, prof),
			body:     marchallObj(t, course.NewCourse{Code: "cs301"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Faculty creates own course", token: getToken(t, prof),
			body:     marchallObj(t, course.NewCourse{Title: "Databases", Code: "cs201"}),
			wantCode: http.StatusCreated, extra: prof.ID,
		},
		{
			name: "Admin assigns instructor", token: getToken(t, admin),
			body:     marchallObj(t, course.NewCourse{Title: "Compilers", Code: "cs401", InstructorID: prof.ID}),
			wantCode: http.StatusCreated, extra: prof.ID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/courses", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var crs course.Course
				if err := unmarshalBody(rec, &crs); err != nil {
					t.Fatalf("decoding response failed, %v", err)
				}
				if wantInstr, ok := tt.extra.(string); ok && crs.InstructorID != wantInstr {
					t.Errorf("instructorID = %s; want %s", crs.InstructorID, wantInstr)
				}
			}
		})
	}
}

func Test_courseApi_update(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	otherProf := createUser(t, "John", "Prof", "prof2@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)

	tests := []httpTest{
		{
			name: "Unknown course is 404", path: "/v1/courses/lol", token: getToken(t, admin),
			body:     marchallObj(t, course.UpdateCourse{Title: "Algo"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Student cannot update", path: "/v1/courses/" + crs.ID, token: getToken(t, student),
			body:     marchallObj(t, course.UpdateCourse{Title: "Algo"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Other faculty cannot update", path: "/v1/courses/" + crs.ID, token: getToken(t, otherProf),
			body:     marchallObj(t, course.UpdateCourse{Title: "Algo"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Instructor cannot change code", path: "/v1/courses/" + crs.ID, token: getToken(t, prof),
			body:     marchallObj(t, course.UpdateCourse{Code: "cs999"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Instructor cannot reassign", path: "/v1/courses/" + crs.ID, token: getToken(t, prof),
			body:     marchallObj(t, course.UpdateCourse{InstructorID: otherProf.ID}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Instructor updates title", path: "/v1/courses/" + crs.ID, token: getToken(t, prof),
			body:     marchallObj(t, course.UpdateCourse{Title: "Algorithms II"}),
			wantCode: http.StatusOK, extra: "Algorithms II",
		},
		{
			name: "Admin changes code", path: "/v1/courses/" + crs.ID, token: getToken(t, admin),
			body:     marchallObj(t, course.UpdateCourse{Code: "cs999"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if wantTitle, ok := tt.extra.(string); ok && rec.Code == http.StatusOK {
				var got course.Course
				if err := unmarshalBody(rec, &got); err != nil {
					t.Fatalf("decoding response failed, %v", err)
				}
				if got.Title != wantTitle {
					t.Errorf("title = %s; want %s", got.Title, wantTitle)
				}
			}
		})
	}
}

func Test_courseApi_destroy(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)

	tests := []httpTest{
		{
			name: "Unknown course is 404", path: "/v1/courses/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Student cannot delete", path: "/v1/courses/" + crs.ID, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Not even the instructor", path: "/v1/courses/" + crs.ID, token: getToken(t, prof),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Admin deletes", path: "/v1/courses/" + crs.ID, token: getToken(t, admin),
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	if _, err := crsRepo.GetCourse(context.Background(), crs.ID); err != course.ErrNotFound {
		t.Errorf("GetCourse() after delete; err = %v, want %v", err, course.ErrNotFound)
	}
}

func Test_courseApi_enrollment(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	otherProf := createUser(t, "John", "Prof", "prof2@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	newKid := createUser(t, "New", "Kid", "kid@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)

	enrollPath := "/v1/courses/" + crs.ID + "/students"
	body := func(ids ...string) []byte {
		return marchallObj(t, course.EnrollStudents{StudentIDs: ids})
	}

	tests := []httpTest{
		{
			name: "enroll: unknown course is 404", method: http.MethodPost, path: "/v1/courses/lol/students",
			token: getToken(t, admin), body: body(newKid.ID),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "enroll: student cannot enroll", method: http.MethodPost, path: enrollPath,
			token: getToken(t, student), body: body(newKid.ID),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "enroll: other faculty cannot enroll", method: http.MethodPost, path: enrollPath,
			token: getToken(t, otherProf), body: body(newKid.ID),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "enroll: empty list rejected", method: http.MethodPost, path: enrollPath,
			token: getToken(t, prof), body: body(),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "enroll: unknown student rejected", method: http.MethodPost, path: enrollPath,
			token: getToken(t, prof), body: body("lol"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "InvalidStudentReference"}),
		},
		{
			name: "enroll: non-student target rejected", method: http.MethodPost, path: enrollPath,
			token: getToken(t, prof), body: body(otherProf.ID),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "InvalidStudentReference"}),
		},
		{
			name: "enroll: instructor enrolls", method: http.MethodPost, path: enrollPath,
			token: getToken(t, prof), body: body(newKid.ID),
			wantCode: http.StatusOK, extra: []string{student.ID, newKid.ID},
		},
		{
			name: "enroll: already enrolled is kept once", method: http.MethodPost, path: enrollPath,
			token: getToken(t, admin), body: body(newKid.ID),
			wantCode: http.StatusOK, extra: []string{student.ID, newKid.ID},
		},
		{
			name: "unenroll: unknown student rejected", method: http.MethodDelete, path: enrollPath + "/lol",
			token:    getToken(t, prof),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "InvalidStudentReference"}),
		},
		{
			name: "unenroll: student cannot unenroll", method: http.MethodDelete, path: enrollPath + "/" + newKid.ID,
			token:    getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unenroll: instructor unenrolls", method: http.MethodDelete, path: enrollPath + "/" + newKid.ID,
			token:    getToken(t, prof),
			wantCode: http.StatusOK, extra: []string{student.ID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if wantIDs, ok := tt.extra.([]string); ok && rec.Code == http.StatusOK {
				var got course.Course
				if err := unmarshalBody(rec, &got); err != nil {
					t.Fatalf("decoding response failed, %v", err)
				}
				if len(got.StudentIDs) != len(wantIDs) {
					t.Fatalf("studentIDs = %v; want %v", got.StudentIDs, wantIDs)
				}
				for i, id := range wantIDs {
					if got.StudentIDs[i] != id {
						t.Errorf("studentIDs = %v; want %v", got.StudentIDs, wantIDs)
						break
					}
				}
			}
		})
	}
}
