package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/brightloop/brightloop/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(_ context.Context, schoolID string, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.db.table {
		if s.SchoolID == schoolID && filter.Match(*s) {
			students = append(students, *s)
		}
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, schoolID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if s, ok := repo.db.table[id]; ok && s.SchoolID == schoolID {
			delete(repo.db.table, id)
		}
	}
	return nil
}

func (repo *studentRepository) DeleteStudentsBySchool(_ context.Context, schoolID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, s := range repo.db.table {
		if s.SchoolID == schoolID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
