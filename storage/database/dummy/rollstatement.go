package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/brightloop/brightloop/core/rollstatement"
)

type rollStatementRepository struct {
	db *rollStatementTable
}

var _ rollstatement.Repository = (*rollStatementRepository)(nil)

func NewRollStatementRepository(db *DB) rollstatement.Repository {
	return &rollStatementRepository{db: db.rollStatement}
}

func (repo *rollStatementRepository) CreateStatement(_ context.Context, s rollstatement.Statement) (rollstatement.Statement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *rollStatementRepository) GetStatementByID(_ context.Context, id string) (rollstatement.Statement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return rollstatement.Statement{}, rollstatement.ErrNotFound
}

func (repo *rollStatementRepository) FilterStatements(_ context.Context, schoolID string, filter rollstatement.QueryFilter) ([]rollstatement.Statement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	stmts := make([]rollstatement.Statement, 0)
	for _, s := range repo.db.table {
		if s.SchoolID == schoolID && filter.Match(*s) {
			stmts = append(stmts, *s)
		}
	}
	sort.SliceStable(stmts, func(i, j int) bool { return stmts[i].CreatedAt.After(stmts[j].CreatedAt) })
	return stmts, nil
}

func (repo *rollStatementRepository) UpdateStatement(_ context.Context, s rollstatement.Statement) (rollstatement.Statement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return rollstatement.Statement{}, rollstatement.ErrNotFound
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *rollStatementRepository) DeleteStatementsByID(_ context.Context, schoolID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if s, ok := repo.db.table[id]; ok && s.SchoolID == schoolID {
			delete(repo.db.table, id)
		}
	}
	return nil
}

func (repo *rollStatementRepository) DeleteStatementsBySchool(_ context.Context, schoolID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, s := range repo.db.table {
		if s.SchoolID == schoolID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
