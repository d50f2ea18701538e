package dummydb

import (
	"sync"

	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/rollstatement"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/user"
)

type (
	// DB keeps every table in memory. It backs tests and the "memory" database engine.
	DB struct {
		user          *userTable
		school        *schoolTable
		student       *studentTable
		admission     *admissionTable
		rollStatement *rollStatementTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	schoolTable struct {
		sync.RWMutex
		table map[string]*school.Profile
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	admissionTable struct {
		sync.RWMutex
		table map[string]*admission.Form
	}

	rollStatementTable struct {
		sync.RWMutex
		table map[string]*rollstatement.Statement
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:          &userTable{table: make(map[string]*user.User)},
		school:        &schoolTable{table: make(map[string]*school.Profile)},
		student:       &studentTable{table: make(map[string]*student.Student)},
		admission:     &admissionTable{table: make(map[string]*admission.Form)},
		rollStatement: &rollStatementTable{table: make(map[string]*rollstatement.Statement)},
	}
	return db, nil
}

func (db *DB) Close() error { return nil }
