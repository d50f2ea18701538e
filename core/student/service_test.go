package student_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/student"
	dummydb "github.com/brightloop/brightloop/storage/database/dummy"
	"github.com/brightloop/brightloop/testutil"
)

func setup(t *testing.T) (student.Service, student.Repository) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewStudentRepository(db)
	return student.NewService(repo), repo
}

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	s, err := svc.Create(ctx, "school-1", student.Fields{Name: "Aamir", RollNo: "1", Class: "1st", Gender: student.GenderMale})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "school-1", s.SchoolID)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := svc.Get(ctx, "school-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = svc.Get(ctx, "school-2", s.ID)
	assert.Equal(t, student.ErrNotFound, err)
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	for i, class := range []string{"2nd", "1st", "UKG", "1st"} {
		testutil.CreateStudent(t, repo, "school-1", "Student", string(rune('1'+i)), class, student.GenderMale)
	}
	testutil.CreateStudent(t, repo, "school-2", "Other", "1", "1st", student.GenderMale)

	res, err := svc.Query(ctx, "school-1", student.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, 1, res.TotalPages)
	classes := make([]string, 0, len(res.Results))
	for _, s := range res.Results {
		classes = append(classes, s.Class+"/"+s.RollNo)
	}
	assert.Equal(t, []string{"UKG/3", "1st/2", "1st/4", "2nd/1"}, classes)

	res, err = svc.Query(ctx, "school-1", student.QueryFilter{Class: "1st"}, core.Page{Number: 2, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "4", res.Results[0].RollNo)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	s := testutil.CreateStudent(t, repo, "school-1", "Aamir", "1", "1st", student.GenderMale)
	other := testutil.CreateStudent(t, repo, "school-2", "Zahid", "1", "1st", student.GenderMale)

	f := s.Fields
	f.Class = "2nd"
	got, err := svc.Update(ctx, "school-1", s.ID, f)
	require.NoError(t, err)
	assert.Equal(t, "2nd", got.Class)

	_, err = svc.Update(ctx, "school-1", other.ID, f)
	assert.Equal(t, student.ErrNotFound, err)

	require.NoError(t, svc.Delete(ctx, "school-1", s.ID, other.ID))
	_, err = svc.Get(ctx, "school-1", s.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = svc.Get(ctx, "school-2", other.ID)
	assert.NoError(t, err, "students of other schools are kept")
}

func TestService_CountByClassAndGender(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	testutil.CreateStudent(t, repo, "school-1", "A", "1", "1st", student.GenderMale)
	testutil.CreateStudent(t, repo, "school-1", "B", "2", "1st", student.GenderFemale)
	testutil.CreateStudent(t, repo, "school-1", "C", "3", "1st", student.GenderFemale)
	testutil.CreateStudent(t, repo, "school-1", "D", "1", "2nd", student.GenderOther)
	testutil.CreateStudent(t, repo, "school-2", "E", "1", "1st", student.GenderMale)

	counts, err := svc.CountByClassAndGender(ctx, "school-1")
	require.NoError(t, err)
	assert.Equal(t, student.ClassCount{Boys: 1, Girls: 2}, counts["1st"])
	assert.Equal(t, student.ClassCount{}, counts["2nd"])
	assert.Equal(t, student.ClassCount{}, counts["3rd"])
}

func TestService_PurgeSchool(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	testutil.CreateStudent(t, repo, "school-1", "A", "1", "1st", student.GenderMale)
	testutil.CreateStudent(t, repo, "school-2", "B", "1", "1st", student.GenderMale)

	require.NoError(t, svc.PurgeSchool(ctx, "school-1"))

	res, err := svc.Query(ctx, "school-1", student.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	res, err = svc.Query(ctx, "school-2", student.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}
