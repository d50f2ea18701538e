package echoapi

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/brightloop/core/blob"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/user"
	"github.com/brightloop/brightloop/testutil"
)

func Test_computeStats(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	daysAgo := func(n int) time.Time { return now.Add(-time.Duration(n) * 24 * time.Hour) }

	tests := []struct {
		name    string
		users   []user.User
		schools []school.Profile
		want    Stats
	}{
		{name: "empty", want: Stats{AvgRegsPerDay: "0.0"}},
		{
			name:    "single school",
			users:   []user.User{{IsApproved: true}, {IsApproved: false}},
			schools: []school.Profile{{CreatedAt: daysAgo(3)}},
			want:    Stats{TotalUsers: 2, TotalSchools: 1, PendingApprovals: 1, AvgRegsPerDay: "1.0"},
		},
		{
			name:    "rate since the oldest school",
			users:   []user.User{{}, {}, {}},
			schools: []school.Profile{{CreatedAt: daysAgo(1)}, {CreatedAt: daysAgo(6)}, {CreatedAt: daysAgo(2)}},
			want:    Stats{TotalUsers: 3, TotalSchools: 3, PendingApprovals: 3, AvgRegsPerDay: "0.5"},
		},
		{
			name:    "undated schools are not rated",
			schools: []school.Profile{{}, {CreatedAt: daysAgo(4)}},
			want:    Stats{TotalSchools: 2, AvgRegsPerDay: "1.0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, computeStats(tt.users, tt.schools, now))
		})
	}
}

func Test_adminApi_access(t *testing.T) {
	app := setup(t)
	fx := seed(t)

	tests := []httpTest{
		{name: "auth required", method: http.MethodGet, path: "/v1/admin/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "school admins forbidden", method: http.MethodGet, path: "/v1/admin/users", token: getToken(t, fx.principal),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "admins allowed", method: http.MethodGet, path: "/v1/admin/roles", token: getToken(t, fx.admin), wantData: marchallObj(t, user.Roles)},
	}
	runHTTPTests(t, app, tests)
}

func Test_adminApi_stats(t *testing.T) {
	app := setup(t)
	fx := seed(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/stats", getToken(t, fx.admin))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats Stats
	decode(t, rec, &stats)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalSchools)
	assert.Equal(t, 1, stats.PendingApprovals)
	assert.Equal(t, "1.0", stats.AvgRegsPerDay)
}

func Test_adminApi_queryUsers(t *testing.T) {
	app := setup(t)
	fx := seed(t)
	token := getToken(t, fx.admin)

	tests := []httpTest{
		{name: "pending approval", path: "/v1/admin/users?is_approved=false", wantData: marchallList(t, fx.pending)},
		{name: "search by email", path: "/v1/admin/users?search=NEWCOMER", wantData: marchallList(t, fx.newcomer)},
		{name: "admins", path: "/v1/admin/users?role=admin", wantData: marchallList(t, fx.admin)},
		{name: "no match", path: "/v1/admin/users?search=lol", wantData: []byte(`[]`)},
	}
	for i := range tests {
		tests[i].method = http.MethodGet
		tests[i].token = token
	}
	runHTTPTests(t, app, tests)
}

func Test_adminApi_updateUser(t *testing.T) {
	app := setup(t)
	fx := seed(t)
	token := getToken(t, fx.admin)

	t.Run("approval sends a mail", func(t *testing.T) {
		mailSvc.Reset()
		req, rec := newAuthRequest(http.MethodPatch, "/v1/admin/users/"+fx.pending.ID, token, []byte(`{"isApproved":true}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var usr user.User
		decode(t, rec, &usr)
		assert.True(t, usr.IsApproved)

		sent := mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "account_approved", sent[0].TemplateName)
		assert.Equal(t, fx.pending.Email, sent[0].To[0].Address)
	})

	tests := []httpTest{
		{
			name: "invalid role", path: "/v1/admin/users/" + fx.newcomer.ID, body: []byte(`{"role":"lol"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"role": "invalid role"}),
		},
		{
			name: "unknown user", path: "/v1/admin/users/lol", body: []byte(`{"role":"admin"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "cannot unapprove self", path: "/v1/admin/users/" + fx.admin.ID, body: []byte(`{"isApproved":false}`),
			wantCode: http.StatusForbidden,
		},
		{
			name: "cannot demote self", path: "/v1/admin/users/" + fx.admin.ID, body: []byte(`{"role":"school_admin"}`),
			wantCode: http.StatusForbidden,
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPatch
		tests[i].token = token
	}
	runHTTPTests(t, app, tests)
}

func Test_adminApi_destroyUsers(t *testing.T) {
	app := setup(t)
	fx := seed(t)
	token := getToken(t, fx.admin)
	ctx := context.Background()

	tests := []httpTest{
		{name: "cannot delete self", path: "/v1/admin/users/" + fx.admin.ID, wantCode: http.StatusForbidden},
		{name: "cannot delete self among others", path: "/v1/admin/users?id=" + fx.pending.ID + "&id=" + fx.admin.ID, wantCode: http.StatusForbidden},
		{name: "unknown user", path: "/v1/admin/users/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"})},
		{name: "delete one", path: "/v1/admin/users/" + fx.pending.ID, wantCode: http.StatusNoContent},
		{name: "delete many", path: "/v1/admin/users?id=" + fx.newcomer.ID, wantCode: http.StatusNoContent},
		{name: "nothing to delete", path: "/v1/admin/users", wantCode: http.StatusNoContent},
	}
	for i := range tests {
		tests[i].method = http.MethodDelete
		tests[i].token = token
	}
	runHTTPTests(t, app, tests)

	for _, id := range []string{fx.pending.ID, fx.newcomer.ID} {
		_, err := usrRepo.GetUserByID(ctx, id)
		assert.True(t, err != nil, "user %s still exists", id)
	}
	_, err := usrRepo.GetUserByID(ctx, fx.admin.ID)
	assert.NoError(t, err)
}

func Test_adminApi_schools(t *testing.T) {
	app := setup(t)
	fx := seed(t)
	token := getToken(t, fx.admin)
	ctx := context.Background()

	t.Run("query", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/schools?search=kupwara", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var schools []school.Profile
		decode(t, rec, &schools)
		require.Len(t, schools, 1)
		assert.Equal(t, fx.school.ID, schools[0].ID)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, school.ProfileData{Name: "Govt Girls High School Kupwara", Type: school.TypeSecondary})
		req, rec := newAuthRequest(http.MethodPut, "/v1/admin/schools/"+fx.school.ID, token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var p school.Profile
		decode(t, rec, &p)
		assert.Equal(t, "Govt Girls High School Kupwara", p.Name)
		assert.Equal(t, school.TypeSecondary, p.Type)
		assert.Equal(t, fx.school.Slug, p.Slug, "slug must not change")
	})

	t.Run("delete purges the school", func(t *testing.T) {
		testutil.CreateStudent(t, studentRepo, fx.school.ID, "Aamir Lone", "1", "6th", student.GenderMale)
		_, err := app.deps.Store.Put(ctx, "schools/"+fx.school.Slug+"/signature.png", bytes.NewReader([]byte("png")), blob.PutOptions{})
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodDelete, "/v1/admin/schools/"+fx.school.ID, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		_, err = schoolRepo.GetSchoolByID(ctx, fx.school.ID)
		assert.True(t, err != nil, "school still exists")
		students, err := studentRepo.FilterStudents(ctx, fx.school.ID, student.QueryFilter{})
		require.NoError(t, err)
		assert.Empty(t, students)
		files, err := app.deps.Store.List(ctx, "schools/")
		require.NoError(t, err)
		assert.Empty(t, files)

		owner, err := usrRepo.GetUserByID(ctx, fx.principal.ID)
		require.NoError(t, err)
		assert.False(t, owner.HasSchool())
	})

	t.Run("unknown school", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/schools/"+fx.school.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "school not found"})}, rec)
	})
}
