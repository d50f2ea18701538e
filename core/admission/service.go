package admission

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/blob"
	"github.com/brightloop/brightloop/core/undo"
)

const collection = "admission_forms"

var ErrNotFound = core.NewNotFoundError("admission form")

type (
	Repository interface {
		CreateForm(ctx context.Context, f Form) (Form, error)
		GetFormByID(ctx context.Context, id string) (Form, error)
		// FilterForms returns the forms of the school matching filter, newest first.
		FilterForms(ctx context.Context, schoolID string, filter QueryFilter) ([]Form, error)
		UpdateForm(ctx context.Context, f Form) (Form, error)
		DeleteFormsByID(ctx context.Context, schoolID string, ids ...string) error
		DeleteFormsBySchool(ctx context.Context, schoolID string) error
	}

	Service interface {
		Create(ctx context.Context, schoolID string, f Fields) (Form, error)
		Get(ctx context.Context, schoolID, id string) (Form, error)
		Query(ctx context.Context, schoolID string, filter QueryFilter, page core.Page) (core.PageResult[Form], error)
		Update(ctx context.Context, schoolID, id string, f Fields) (Form, error)
		UploadPhoto(ctx context.Context, schoolID, id string, r io.Reader, contentType string) (Form, error)
		// ScheduleDelete hides the forms right away and deletes them once the undo window has passed.
		ScheduleDelete(ctx context.Context, schoolID string, ids ...string) (undo.Batch, error)
		Undo(ctx context.Context, schoolID, token string) ([]string, error)
		PurgeSchool(ctx context.Context, schoolID string) error
	}

	service struct {
		repo      Repository
		scheduler *undo.Scheduler
		store     blob.Store
		conf      *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, scheduler *undo.Scheduler, store blob.Store, conf *core.Config) Service {
	return &service{
		repo:      repo,
		scheduler: scheduler,
		store:     store,
		conf:      conf,
	}
}

func (svc *service) Create(ctx context.Context, schoolID string, f Fields) (Form, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateForm(ctx, Form{
		SchoolID:  schoolID,
		Fields:    f,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get returns the form only when it belongs to the school and is not pending deletion.
func (svc *service) Get(ctx context.Context, schoolID, id string) (Form, error) {
	f, err := svc.repo.GetFormByID(ctx, id)
	if err != nil {
		return Form{}, err
	}
	if f.SchoolID != schoolID || svc.scheduler.Hidden(undo.Owner(collection, schoolID))[id] {
		return Form{}, ErrNotFound
	}
	return f, nil
}

func (svc *service) Query(ctx context.Context, schoolID string, filter QueryFilter, page core.Page) (core.PageResult[Form], error) {
	forms, err := svc.repo.FilterForms(ctx, schoolID, filter)
	if err != nil {
		return core.PageResult[Form]{}, errors.Wrap(err, "filtering admission forms")
	}
	forms = core.Exclude(forms, svc.scheduler.Hidden(undo.Owner(collection, schoolID)), func(f Form) string { return f.ID })
	page.Clean(DefaultPageSize)
	return core.Paginate(forms, page), nil
}

func (svc *service) Update(ctx context.Context, schoolID, id string, f Fields) (Form, error) {
	form, err := svc.Get(ctx, schoolID, id)
	if err != nil {
		return Form{}, err
	}
	if f.Photo == "" {
		f.Photo = form.Photo
	}
	form.Fields = f
	form.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateForm(ctx, form)
}

func (svc *service) UploadPhoto(ctx context.Context, schoolID, id string, r io.Reader, contentType string) (Form, error) {
	form, err := svc.Get(ctx, schoolID, id)
	if err != nil {
		return Form{}, err
	}
	key := fmt.Sprintf("schools/%s/admissions/%s/photo", schoolID, form.ID)
	if _, err = svc.store.Put(ctx, key, r, blob.PutOptions{ContentType: contentType}); err != nil {
		return Form{}, errors.Wrap(err, "storing photo")
	}
	form.Photo = blob.URLFor(svc.conf.Blob.PublicBaseURL, key)
	form.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateForm(ctx, form)
}

func (svc *service) ScheduleDelete(ctx context.Context, schoolID string, ids ...string) (undo.Batch, error) {
	ids, err := svc.owned(ctx, schoolID, ids)
	if err != nil {
		return undo.Batch{}, err
	}
	if len(ids) == 0 {
		return undo.Batch{}, ErrNotFound
	}
	commit := func(ctx context.Context, ids []string) error {
		if err := svc.repo.DeleteFormsByID(ctx, schoolID, ids...); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := blob.DeletePrefix(ctx, svc.store, fmt.Sprintf("schools/%s/admissions/%s/", schoolID, id)); err != nil {
				return err
			}
		}
		return nil
	}
	return svc.scheduler.Schedule(undo.Owner(collection, schoolID), ids, commit), nil
}

// owned keeps the ids of forms that belong to the school.
func (svc *service) owned(ctx context.Context, schoolID string, ids []string) ([]string, error) {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := svc.Get(ctx, schoolID, id); err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, errors.Wrap(err, "finding admission form")
		}
		kept = append(kept, id)
	}
	return kept, nil
}

func (svc *service) Undo(_ context.Context, schoolID, token string) ([]string, error) {
	return svc.scheduler.Undo(undo.Owner(collection, schoolID), token)
}

func (svc *service) PurgeSchool(ctx context.Context, schoolID string) error {
	return svc.repo.DeleteFormsBySchool(ctx, schoolID)
}
