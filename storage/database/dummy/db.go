package dummydb

import (
	"sync"

	"github.com/campusbridge/backend/core/assignment"
	"github.com/campusbridge/backend/core/attendance"
	"github.com/campusbridge/backend/core/course"
	"github.com/campusbridge/backend/core/material"
	"github.com/campusbridge/backend/core/submission"
	"github.com/campusbridge/backend/core/user"
)

// DB is an in-memory store used by tests and local development.
type (
	DB struct {
		user       *userTable
		course     *courseTable
		material   *materialTable
		assignment *assignmentTable
		submission *submissionTable
		attendance *attendanceTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	materialTable struct {
		sync.RWMutex
		table map[string]*material.Material
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*submission.Submission
	}

	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.Record
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		material:   &materialTable{table: make(map[string]*material.Material)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		submission: &submissionTable{table: make(map[string]*submission.Submission)},
		attendance: &attendanceTable{table: make(map[string]*attendance.Record)},
	}
	return db, nil
}
