package tests

import (
	"net/http"
	"testing"

	"github.com/campusbridge/backend/core/material"
	"github.com/campusbridge/backend/core/user"
)

func Test_materialApi_query(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	outsider := createUser(t, "Out", "Sider", "out@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)
	syllabus := createMaterial(t, crs.ID, "Syllabus", true)
	draft := createMaterial(t, crs.ID, "Draft notes", false)

	path := "/v1/courses/" + crs.ID + "/materials"

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown course is 404", path: "/v1/courses/lol/materials", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Unenrolled student", path: path, token: getToken(t, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Instructor sees drafts", path: path, token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: marchallList(t, syllabus, draft),
		},
		{
			name: "Admin sees drafts", path: path, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, syllabus, draft),
		},
		{
			name: "Student sees published only", path: path, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, syllabus),
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

func Test_materialApi_retrieve(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	admin := createUser(t, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)
	other := createCourse(t, "Databases", "cs201", prof.ID)
	syllabus := createMaterial(t, crs.ID, "Syllabus", true)
	draft := createMaterial(t, crs.ID, "Draft notes", false)
	foreign := createMaterial(t, other.ID, "ER diagrams", true)

	path := func(id string) string { return "/v1/courses/" + crs.ID + "/materials/" + id }

	tests := []httpTest{
		{
			name: "Unknown material is 404", path: path("lol"), token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Material of another course is 404", path: path(foreign.ID), token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Student reads published", path: path(syllabus.ID), token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, syllabus),
		},
		{
			name: "Student cannot read draft", path: path(draft.ID), token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Instructor reads draft", path: path(draft.ID), token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: marchallObj(t, draft),
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

func Test_materialApi_write(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Jane", "Prof", "prof@test.cd", "", user.RoleFaculty, true)
	student := createUser(t, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)

	crs := createCourse(t, "Algorithms", "cs101", prof.ID, student.ID)
	draft := createMaterial(t, crs.ID, "Draft notes", false)

	path := "/v1/courses/" + crs.ID + "/materials"
	bPtr := func(b bool) *bool { return &b }

	tests := []httpTest{
		{
			name: "create: student cannot", method: http.MethodPost, path: path, token: getToken(t, student),
			body:     marchallObj(t, material.NewMaterial{Title: "Cheat sheet"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "create: title required", method: http.MethodPost, path: path, token: getToken(t, prof),
			body:     marchallObj(t, material.NewMaterial{}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "create: bad type rejected", method: http.MethodPost, path: path, token: getToken(t, prof),
			body:     marchallObj(t, material.NewMaterial{Title: "Lecture 1", Type: "lol"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "create: bad url rejected", method: http.MethodPost, path: path, token: getToken(t, prof),
			body:     marchallObj(t, material.NewMaterial{Title: "Lecture 1", Type: material.TypeLink, URL: "lol"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "create: instructor creates", method: http.MethodPost, path: path, token: getToken(t, prof),
			body:     marchallObj(t, material.NewMaterial{Title: "Lecture 1", Type: material.TypeVideo, URL: "https://videos.test.cd/1"}),
			wantCode: http.StatusCreated,
		},
		{
			name: "update: student cannot publish", method: http.MethodPut, path: path + "/" + draft.ID, token: getToken(t, student),
			body:     marchallObj(t, material.UpdateMaterial{IsPublished: bPtr(true)}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "update: instructor publishes", method: http.MethodPut, path: path + "/" + draft.ID, token: getToken(t, prof),
			body:     marchallObj(t, material.UpdateMaterial{IsPublished: bPtr(true)}),
			wantCode: http.StatusOK, extra: true,
		},
		{
			name: "destroy: student cannot", method: http.MethodDelete, path: path + "/" + draft.ID, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "destroy: instructor deletes", method: http.MethodDelete, path: path + "/" + draft.ID, token: getToken(t, prof),
			wantCode: http.StatusNoContent,
		},
		{
			name: "destroy: gone is 404", method: http.MethodDelete, path: path + "/" + draft.ID, token: getToken(t, prof),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if wantPublished, ok := tt.extra.(bool); ok && rec.Code == http.StatusOK {
				var got material.Material
				if err := unmarshalBody(rec, &got); err != nil {
					t.Fatalf("decoding response failed, %v", err)
				}
				if got.Published() != wantPublished {
					t.Errorf("published = %v; want %v", got.Published(), wantPublished)
				}
			}
		})
	}
}
