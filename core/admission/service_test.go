package admission_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/undo"
	memoryblob "github.com/brightloop/brightloop/storage/blob/memory"
	dummydb "github.com/brightloop/brightloop/storage/database/dummy"
	"github.com/brightloop/brightloop/testutil"
)

type fixture struct {
	svc       admission.Service
	repo      admission.Repository
	store     *memoryblob.Store
	scheduler *undo.Scheduler
}

func setup(t *testing.T) *fixture {
	db, err := dummydb.Open()
	require.NoError(t, err)
	f := &fixture{
		repo:      dummydb.NewAdmissionRepository(db),
		store:     memoryblob.New(),
		scheduler: undo.NewScheduler(time.Hour, &testutil.Logger{}),
	}
	f.svc = admission.NewService(f.repo, f.scheduler, f.store, testutil.NewConfig())
	return f
}

func (f *fixture) create(t *testing.T, schoolID, name, admissionNo string) admission.Form {
	form, err := f.svc.Create(context.Background(), schoolID, admission.Fields{FullName: name, AdmissionNo: admissionNo})
	require.NoError(t, err)
	return form
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	form := f.create(t, "school-1", "AAMIR AHMAD", "A-1")

	assert.NotEmpty(t, form.ID)
	assert.Equal(t, "school-1", form.SchoolID)
	assert.Equal(t, form.CreatedAt, form.UpdatedAt)

	_, err := f.svc.Get(context.Background(), "school-2", form.ID)
	assert.Equal(t, admission.ErrNotFound, err)
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		core.NowFunc = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		f.create(t, "school-1", "STUDENT "+string(rune('A'+i)), "A-"+string(rune('A'+i)))
	}
	core.NowFunc = time.Now
	f.create(t, "school-2", "STUDENT Z", "Z-1")

	res, err := f.svc.Query(ctx, "school-1", admission.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 11, res.Count)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Results, admission.DefaultPageSize)
	assert.Equal(t, "STUDENT K", res.Results[0].FullName, "newest first")

	res, err = f.svc.Query(ctx, "school-1", admission.QueryFilter{Search: "student c"}, core.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "A-C", res.Results[0].AdmissionNo)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	form := f.create(t, "school-1", "AAMIR", "A-1")
	form, err := f.svc.UploadPhoto(ctx, "school-1", form.ID, strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/media/schools/school-1/admissions/"+form.ID+"/photo", form.Photo)

	got, err := f.svc.Update(ctx, "school-1", form.ID, admission.Fields{FullName: "AAMIR AHMAD", AdmissionNo: "A-1"})
	require.NoError(t, err)
	assert.Equal(t, "AAMIR AHMAD", got.FullName)
	assert.Equal(t, form.Photo, got.Photo, "the photo is kept")
}

func TestService_ScheduleDeleteAndUndo(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.create(t, "school-1", "A", "1")
	b := f.create(t, "school-1", "B", "2")
	other := f.create(t, "school-2", "C", "3")
	_, err := f.svc.UploadPhoto(ctx, "school-1", a.ID, strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)

	batch, err := f.svc.ScheduleDelete(ctx, "school-1", a.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, batch.IDs)

	_, err = f.svc.Get(ctx, "school-1", a.ID)
	assert.Equal(t, admission.ErrNotFound, err, "pending deletion is hidden")
	res, err := f.svc.Query(ctx, "school-1", admission.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	restored, err := f.svc.Undo(ctx, "school-1", batch.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, restored)
	_, err = f.svc.Get(ctx, "school-1", a.ID)
	assert.NoError(t, err)

	_, err = f.svc.Undo(ctx, "school-1", batch.Token)
	assert.Equal(t, undo.ErrNothingToUndo, err)

	_, err = f.svc.ScheduleDelete(ctx, "school-1", a.ID, b.ID)
	require.NoError(t, err)
	f.scheduler.Flush(ctx)

	_, err = f.repo.GetFormByID(ctx, a.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = f.repo.GetFormByID(ctx, other.ID)
	assert.NoError(t, err)
	files, err := f.store.List(ctx, "schools/school-1/")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = f.svc.ScheduleDelete(ctx, "school-1", a.ID)
	assert.Equal(t, admission.ErrNotFound, err)
}

func TestService_PurgeSchool(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.create(t, "school-1", "A", "1")
	kept := f.create(t, "school-2", "B", "2")

	require.NoError(t, f.svc.PurgeSchool(ctx, "school-1"))

	res, err := f.svc.Query(ctx, "school-1", admission.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	_, err = f.svc.Get(ctx, "school-2", kept.ID)
	assert.NoError(t, err)
}
