package user_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/user"
	emailsvc "github.com/brightloop/brightloop/services/email"
	dummydb "github.com/brightloop/brightloop/storage/database/dummy"
	"github.com/brightloop/brightloop/testutil"
)

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(&testutil.Logger{}, true)
	os.Exit(m.Run())
}

type fixture struct {
	svc     user.Service
	repo    user.Repository
	mailSvc *emailsvc.ConsoleServiceMock
}

func newFixture(t *testing.T) fixture {
	conf := testutil.NewConfig()
	mem, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewUserRepository(mem)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, &testutil.Logger{})
	return fixture{svc: user.NewService(repo, mailSvc, conf), repo: repo, mailSvc: mailSvc}
}

func TestService_Signup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	usr, err := f.svc.Signup(ctx, user.NewUser{Email: " Head@School.IN ", Password: "LolC@t123", PasswordConfirm: "LolC@t123"})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "head@school.in", usr.Email)
	assert.Equal(t, user.RoleSchoolAdmin, usr.Role)
	assert.False(t, usr.IsApproved)
	assert.NoError(t, usr.CheckPassword("LolC@t123"))
	assert.False(t, usr.HasSchool())

	t.Run("email taken", func(t *testing.T) {
		err := f.svc.CheckUniqueness("head@school.in")
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
		assert.NoError(t, f.svc.CheckUniqueness("head@school.in", usr.ID))

		_, err = f.svc.Signup(ctx, user.NewUser{Email: "head@school.in", Password: "LolC@t123"})
		assert.Equal(t, user.ErrEmailExists, err)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := f.svc.GetByEmail(ctx, "HEAD@school.in")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)

		_, err = f.svc.GetByID(ctx, "lol")
		assert.True(t, core.IsNotFound(err))
		_, err = f.svc.GetByEmail(ctx, "nobody@school.in")
		assert.True(t, core.IsNotFound(err))
	})
}

func TestService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	usr, err := f.svc.Create(ctx, "head@school.in", "LolC@t123", user.RoleSchoolAdmin, false)
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, usr.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.False(t, approved.UpdatedAt.Before(usr.UpdatedAt))

	sent := f.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "account_approved", sent[0].TemplateName)
	assert.Equal(t, "head@school.in", sent[0].To[0].Address)

	// approving twice does not send the mail again
	_, err = f.svc.Approve(ctx, usr.ID, true)
	require.NoError(t, err)
	assert.Len(t, f.mailSvc.SentMessages(), 1)

	promoted, err := f.svc.Update(ctx, usr.ID, user.UpdateUser{Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())
	assert.True(t, promoted.IsApproved, "role change must keep the approval")

	_, err = f.svc.Update(ctx, "lol", user.UpdateUser{Role: user.RoleAdmin})
	assert.True(t, core.IsNotFound(err))
}

func TestService_AttachSchool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	usr, err := f.svc.Create(ctx, "head@school.in", "LolC@t123", user.RoleSchoolAdmin, true)
	require.NoError(t, err)

	usr, err = f.svc.AttachSchool(ctx, usr.ID, "school-1")
	require.NoError(t, err)
	assert.Equal(t, "school-1", usr.SchoolID)

	usr, err = f.svc.AttachSchool(ctx, usr.ID, "")
	require.NoError(t, err)
	assert.False(t, usr.HasSchool())

	got, err := f.repo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SchoolID)
}

func TestService_Query(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.svc.Create(ctx, "admin@brightloop.in", "LolC@t123", user.RoleAdmin, true)
	require.NoError(t, err)
	pending, err := f.svc.Create(ctx, "pending@school.in", "LolC@t123", user.RoleSchoolAdmin, false)
	require.NoError(t, err)

	no := false
	tests := []struct {
		name    string
		filter  user.QueryFilter
		wantIDs []string
	}{
		{name: "role", filter: user.QueryFilter{Role: user.RoleAdmin}, wantIDs: []string{admin.ID}},
		{name: "pending", filter: user.QueryFilter{IsApproved: &no}, wantIDs: []string{pending.ID}},
		{name: "search", filter: user.QueryFilter{Search: "PENDING"}, wantIDs: []string{pending.ID}},
		{name: "no match", filter: user.QueryFilter{Search: "lol"}, wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Clean()
			users, err := f.svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(users))
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	require.NoError(t, f.svc.Delete(ctx, pending.ID))
	_, err = f.svc.GetByID(ctx, pending.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestService_PasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	usr, err := f.svc.Create(ctx, "head@school.in", "LolC@t123", user.RoleSchoolAdmin, true)
	require.NoError(t, err)
	usr, err = f.svc.SetLastLogin(ctx, usr)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), usr.LastLogin, time.Minute)

	err = f.svc.RequestPasswordReset(ctx, "nobody@school.in")
	assert.True(t, core.IsNotFound(err))
	assert.Empty(t, f.mailSvc.SentMessages())

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "Head@School.in"))
	sent := f.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "password_reset", sent[0].TemplateName)
	data := sent[0].TemplateData.(map[string]string)
	assert.Equal(t, user.EncodeUID(usr), data["UID"])

	tests := []struct {
		name    string
		data    user.ResetUserPassword
		wantErr string
	}{
		{name: "bad uid", data: user.ResetUserPassword{UID: "%%%", Token: data["Token"]}, wantErr: "invalid token"},
		{name: "unknown user", data: user.ResetUserPassword{UID: "bG9s", Token: data["Token"]}, wantErr: "invalid token"},
		{name: "bad token", data: user.ResetUserPassword{UID: data["UID"], Token: "lol"}, wantErr: "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ResetPassword(ctx, tt.data)
			require.Error(t, err)
			assert.IsType(t, &core.ValidationError{}, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	reset := user.ResetUserPassword{UID: data["UID"], Token: data["Token"], Password: "N3wP@ssw0rd", PasswordConfirm: "N3wP@ssw0rd"}
	require.NoError(t, f.svc.ResetPassword(ctx, reset))
	got, err := f.svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("N3wP@ssw0rd"))

	// the token dies with the old password
	reset.Password, reset.PasswordConfirm = "Y3tAn0ther!", "Y3tAn0ther!"
	assert.EqualError(t, f.svc.ResetPassword(ctx, reset), "invalid token")
}
