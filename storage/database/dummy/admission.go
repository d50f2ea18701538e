package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/brightloop/brightloop/core/admission"
)

type admissionRepository struct {
	db *admissionTable
}

var _ admission.Repository = (*admissionRepository)(nil)

func NewAdmissionRepository(db *DB) admission.Repository {
	return &admissionRepository{db: db.admission}
}

func (repo *admissionRepository) CreateForm(_ context.Context, f admission.Form) (admission.Form, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *admissionRepository) GetFormByID(_ context.Context, id string) (admission.Form, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.table[id]; ok {
		return *f, nil
	}
	return admission.Form{}, admission.ErrNotFound
}

func (repo *admissionRepository) FilterForms(_ context.Context, schoolID string, filter admission.QueryFilter) ([]admission.Form, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	forms := make([]admission.Form, 0)
	for _, f := range repo.db.table {
		if f.SchoolID == schoolID && filter.Match(*f) {
			forms = append(forms, *f)
		}
	}
	sort.SliceStable(forms, func(i, j int) bool { return forms[i].CreatedAt.After(forms[j].CreatedAt) })
	return forms, nil
}

func (repo *admissionRepository) UpdateForm(_ context.Context, f admission.Form) (admission.Form, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[f.ID]; !ok {
		return admission.Form{}, admission.ErrNotFound
	}
	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *admissionRepository) DeleteFormsByID(_ context.Context, schoolID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if f, ok := repo.db.table[id]; ok && f.SchoolID == schoolID {
			delete(repo.db.table, id)
		}
	}
	return nil
}

func (repo *admissionRepository) DeleteFormsBySchool(_ context.Context, schoolID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, f := range repo.db.table {
		if f.SchoolID == schoolID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
