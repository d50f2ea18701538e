package rollstatement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/rollstatement"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/undo"
	dummydb "github.com/brightloop/brightloop/storage/database/dummy"
	"github.com/brightloop/brightloop/testutil"
)

type fixture struct {
	svc         rollstatement.Service
	repo        rollstatement.Repository
	studentRepo student.Repository
	scheduler   *undo.Scheduler
}

func setup(t *testing.T) *fixture {
	db, err := dummydb.Open()
	require.NoError(t, err)
	f := &fixture{
		repo:        dummydb.NewRollStatementRepository(db),
		studentRepo: dummydb.NewStudentRepository(db),
		scheduler:   undo.NewScheduler(time.Hour, &testutil.Logger{}),
	}
	f.svc = rollstatement.NewService(f.repo, student.NewService(f.studentRepo), f.scheduler)
	return f
}

func (f *fixture) create(t *testing.T, schoolID, month, year string) rollstatement.Statement {
	s, err := f.svc.Create(context.Background(), schoolID, rollstatement.Fields{
		Month: month,
		Year:  year,
		Rows:  []rollstatement.Row{{ID: "r1", ClassName: "1st", Boys: 1, Girls: 2}},
	})
	require.NoError(t, err)
	return s
}

func TestService_NewDraft(t *testing.T) {
	f := setup(t)
	p := school.Profile{ID: "school-1", Zone: "Sopore", RollStatementClasses: []string{"1st", "2nd"}}
	testutil.CreateStudent(t, f.studentRepo, "school-1", "A", "1", "1st", student.GenderMale)
	testutil.CreateStudent(t, f.studentRepo, "school-1", "B", "2", "1st", student.GenderFemale)
	testutil.CreateStudent(t, f.studentRepo, "school-1", "C", "1", "2nd", student.GenderFemale)
	testutil.CreateStudent(t, f.studentRepo, "school-2", "D", "1", "2nd", student.GenderFemale)

	draft, err := f.svc.NewDraft(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, draft.Rows, 2)
	assert.Equal(t, "2nd", draft.Rows[0].ClassName)
	assert.Equal(t, 0, draft.Rows[0].Boys)
	assert.Equal(t, 1, draft.Rows[0].Girls)
	assert.Equal(t, "1st", draft.Rows[1].ClassName)
	assert.Equal(t, 1, draft.Rows[1].Boys)
	assert.Equal(t, 1, draft.Rows[1].Girls)
}

func TestService_CRUD(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s := f.create(t, "school-1", "June", "2025")

	got, err := f.svc.Get(ctx, "school-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	_, err = f.svc.Get(ctx, "school-2", s.ID)
	assert.Equal(t, rollstatement.ErrNotFound, err)

	fields := s.Fields
	fields.RefNo = "ZEO/17"
	got, err = f.svc.Update(ctx, "school-1", s.ID, fields)
	require.NoError(t, err)
	assert.Equal(t, "ZEO/17", got.RefNo)
	assert.False(t, got.UpdatedAt.Before(s.UpdatedAt))
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	base := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	months := []string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October"}
	for i, m := range months {
		core.NowFunc = func() time.Time { return base.AddDate(0, i, 0) }
		f.create(t, "school-1", m, "2025")
	}
	core.NowFunc = time.Now

	res, err := f.svc.Query(ctx, "school-1", rollstatement.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Count)
	require.Len(t, res.Results, rollstatement.DefaultPageSize)
	assert.Equal(t, "October", res.Results[0].Month)

	res, err = f.svc.Query(ctx, "school-1", rollstatement.QueryFilter{Search: "ju"}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
}

func TestService_ScheduleDeleteAndUndo(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.create(t, "school-1", "June", "2025")
	b := f.create(t, "school-1", "July", "2025")

	first, err := f.svc.ScheduleDelete(ctx, "school-1", a.ID)
	require.NoError(t, err)
	res, err := f.svc.Query(ctx, "school-1", rollstatement.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	// a second delete commits the first one
	second, err := f.svc.ScheduleDelete(ctx, "school-1", b.ID)
	require.NoError(t, err)
	_, err = f.repo.GetStatementByID(ctx, a.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = f.svc.Undo(ctx, "school-1", first.Token)
	assert.Equal(t, undo.ErrNothingToUndo, err)

	restored, err := f.svc.Undo(ctx, "school-1", second.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, restored)
	_, err = f.svc.Get(ctx, "school-1", b.ID)
	assert.NoError(t, err)

	_, err = f.svc.ScheduleDelete(ctx, "school-2", b.ID)
	assert.Equal(t, rollstatement.ErrNotFound, err)
}

func TestService_PurgeSchool(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.create(t, "school-1", "June", "2025")
	kept := f.create(t, "school-2", "June", "2025")

	require.NoError(t, f.svc.PurgeSchool(ctx, "school-1"))
	res, err := f.svc.Query(ctx, "school-1", rollstatement.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	_, err = f.svc.Get(ctx, "school-2", kept.ID)
	assert.NoError(t, err)
}
