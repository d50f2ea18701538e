package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core/school"
)

var errSlugTaken = errors.New("school slug already taken")

type schoolRepository struct {
	db *schoolTable
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) CreateSchool(_ context.Context, p school.Profile) (school.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.table {
		if s.Slug == p.Slug {
			return school.Profile{}, errSlugTaken
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *schoolRepository) GetSchoolByID(_ context.Context, id string) (school.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return school.Profile{}, school.ErrNotFound
}

func (repo *schoolRepository) GetSchoolBySlug(_ context.Context, slug string) (school.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, p := range repo.db.table {
		if p.Slug == slug {
			return *p, nil
		}
	}
	return school.Profile{}, school.ErrNotFound
}

func (repo *schoolRepository) FilterSchools(_ context.Context, filter school.QueryFilter) ([]school.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	schools := make([]school.Profile, 0)
	for _, p := range repo.db.table {
		if filter.Match(*p) {
			schools = append(schools, *p)
		}
	}
	sort.SliceStable(schools, func(i, j int) bool { return schools[i].CreatedAt.After(schools[j].CreatedAt) })
	return schools, nil
}

func (repo *schoolRepository) UpdateSchool(_ context.Context, p school.Profile) (school.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return school.Profile{}, school.ErrNotFound
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *schoolRepository) DeleteSchool(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
