package rollstatement

import (
	"context"

	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/undo"
)

const collection = "roll_statements"

var ErrNotFound = core.NewNotFoundError("roll statement")

type (
	Repository interface {
		CreateStatement(ctx context.Context, s Statement) (Statement, error)
		GetStatementByID(ctx context.Context, id string) (Statement, error)
		// FilterStatements returns the statements of the school matching filter, newest first.
		FilterStatements(ctx context.Context, schoolID string, filter QueryFilter) ([]Statement, error)
		UpdateStatement(ctx context.Context, s Statement) (Statement, error)
		DeleteStatementsByID(ctx context.Context, schoolID string, ids ...string) error
		DeleteStatementsBySchool(ctx context.Context, schoolID string) error
	}

	Service interface {
		NewDraft(ctx context.Context, p school.Profile) (Fields, error)
		Create(ctx context.Context, schoolID string, f Fields) (Statement, error)
		Get(ctx context.Context, schoolID, id string) (Statement, error)
		Query(ctx context.Context, schoolID string, filter QueryFilter, page core.Page) (core.PageResult[Statement], error)
		Update(ctx context.Context, schoolID, id string, f Fields) (Statement, error)
		ScheduleDelete(ctx context.Context, schoolID string, ids ...string) (undo.Batch, error)
		Undo(ctx context.Context, schoolID, token string) ([]string, error)
		PurgeSchool(ctx context.Context, schoolID string) error
	}

	service struct {
		repo       Repository
		studentSvc student.Service
		scheduler  *undo.Scheduler
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, studentSvc student.Service, scheduler *undo.Scheduler) Service {
	return &service{
		repo:       repo,
		studentSvc: studentSvc,
		scheduler:  scheduler,
	}
}

func (svc *service) NewDraft(ctx context.Context, p school.Profile) (Fields, error) {
	counts, err := svc.studentSvc.CountByClassAndGender(ctx, p.ID)
	if err != nil {
		return Fields{}, errors.Wrap(err, "counting students")
	}
	return NewDraft(p, counts), nil
}

func (svc *service) Create(ctx context.Context, schoolID string, f Fields) (Statement, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateStatement(ctx, Statement{
		SchoolID:  schoolID,
		Fields:    f,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get returns the statement only when it belongs to the school and is not pending deletion.
func (svc *service) Get(ctx context.Context, schoolID, id string) (Statement, error) {
	s, err := svc.repo.GetStatementByID(ctx, id)
	if err != nil {
		return Statement{}, err
	}
	if s.SchoolID != schoolID || svc.scheduler.Hidden(undo.Owner(collection, schoolID))[id] {
		return Statement{}, ErrNotFound
	}
	return s, nil
}

func (svc *service) Query(ctx context.Context, schoolID string, filter QueryFilter, page core.Page) (core.PageResult[Statement], error) {
	stmts, err := svc.repo.FilterStatements(ctx, schoolID, filter)
	if err != nil {
		return core.PageResult[Statement]{}, errors.Wrap(err, "filtering roll statements")
	}
	stmts = core.Exclude(stmts, svc.scheduler.Hidden(undo.Owner(collection, schoolID)), func(s Statement) string { return s.ID })
	page.Clean(DefaultPageSize)
	return core.Paginate(stmts, page), nil
}

func (svc *service) Update(ctx context.Context, schoolID, id string, f Fields) (Statement, error) {
	s, err := svc.Get(ctx, schoolID, id)
	if err != nil {
		return Statement{}, err
	}
	s.Fields = f
	s.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateStatement(ctx, s)
}

func (svc *service) ScheduleDelete(ctx context.Context, schoolID string, ids ...string) (undo.Batch, error) {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := svc.Get(ctx, schoolID, id); err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return undo.Batch{}, errors.Wrap(err, "finding roll statement")
		}
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		return undo.Batch{}, ErrNotFound
	}
	commit := func(ctx context.Context, ids []string) error {
		return svc.repo.DeleteStatementsByID(ctx, schoolID, ids...)
	}
	return svc.scheduler.Schedule(undo.Owner(collection, schoolID), kept, commit), nil
}

func (svc *service) Undo(_ context.Context, schoolID, token string) ([]string, error) {
	return svc.scheduler.Undo(undo.Owner(collection, schoolID), token)
}

func (svc *service) PurgeSchool(ctx context.Context, schoolID string) error {
	return svc.repo.DeleteStatementsBySchool(ctx, schoolID)
}
