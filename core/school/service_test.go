package school_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/user"
	emailsvc "github.com/brightloop/brightloop/services/email"
	memoryblob "github.com/brightloop/brightloop/storage/blob/memory"
	dummydb "github.com/brightloop/brightloop/storage/database/dummy"
	"github.com/brightloop/brightloop/testutil"
)

type fixture struct {
	svc     school.Service
	repo    school.Repository
	usrRepo user.Repository
	usrSvc  user.Service
	store   *memoryblob.Store
	purged  []string
}

func setup(t *testing.T) *fixture {
	db, err := dummydb.Open()
	require.NoError(t, err)
	conf := testutil.NewConfig()

	f := &fixture{
		repo:    dummydb.NewSchoolRepository(db),
		usrRepo: dummydb.NewUserRepository(db),
		store:   memoryblob.New(),
	}
	f.usrSvc = user.NewService(f.usrRepo, emailsvc.NewConsoleServiceMock(conf, &testutil.Logger{}), conf)
	purge := func(_ context.Context, schoolID string) error {
		f.purged = append(f.purged, schoolID)
		return nil
	}
	f.svc = school.NewService(f.repo, f.usrSvc, f.store, conf, purge)
	return f
}

func profileData() school.ProfileData {
	return school.ProfileData{
		Name:     "Govt Boys High School Sopore",
		Zone:     "Sopore",
		District: "Baramulla",
		Type:     school.TypeSecondary,
	}
}

func TestService_Setup(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	owner := testutil.CreateUser(t, f.usrRepo, "head@school.test", "", user.RoleSchoolAdmin, true)
	pending := testutil.CreateUser(t, f.usrRepo, "new@school.test", "", user.RoleSchoolAdmin, false)
	admin := testutil.CreateUser(t, f.usrRepo, "admin@school.test", "", user.RoleAdmin, true)

	t.Run("unapproved owner", func(t *testing.T) {
		_, err := f.svc.Setup(ctx, pending, profileData())
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok, "want a validation error, got %v", err)
		assert.Equal(t, school.ErrNotApproved, vErr.Err)
	})

	t.Run("system admin", func(t *testing.T) {
		_, err := f.svc.Setup(ctx, admin, profileData())
		require.Error(t, err)
	})

	var created school.Profile
	t.Run("creates the school", func(t *testing.T) {
		var err error
		created, err = f.svc.Setup(ctx, owner, profileData())
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, owner.ID, created.OwnerUID)
		assert.True(t, strings.HasPrefix(created.Slug, "govtboyshighschoolsopore"), created.Slug)
		assert.Equal(t, "Welcome to Govt Boys High School Sopore", created.Website.WelcomeMessage)
		assert.Equal(t, "GBHSS School", created.Website.Abbreviation)
		assert.Equal(t, school.DefaultThemeColor, created.Website.ThemeColor)
		assert.Empty(t, created.Website.Notifications)

		usr, err := f.usrSvc.GetByID(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, usr.SchoolID)
	})

	t.Run("updates the existing school", func(t *testing.T) {
		usr, err := f.usrSvc.GetByID(ctx, owner.ID)
		require.NoError(t, err)
		data := profileData()
		data.HeadmasterName = "G. Mir"

		p, err := f.svc.Setup(ctx, usr, data)
		require.NoError(t, err)
		assert.Equal(t, created.ID, p.ID)
		assert.Equal(t, created.Slug, p.Slug)
		assert.Equal(t, "G. Mir", p.HeadmasterName)
	})
}

func TestService_GetBySlug(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := testutil.CreateSchool(t, f.repo, f.usrRepo, user.User{}, "Green Valley School", "greenvalley7")

	got, err := f.svc.GetBySlug(ctx, "  GreenValley7 ")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.svc.GetBySlug(ctx, "nope")
	assert.True(t, core.IsNotFound(err))
}

func TestService_UpdateWebsite(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := testutil.CreateSchool(t, f.repo, f.usrRepo, user.User{}, "Green Valley School", "greenvalley7")
	p.Website.LogoURL = "/media/schools/" + p.ID + "/logo.png"
	_, err := f.repo.UpdateSchool(ctx, p)
	require.NoError(t, err)

	core.NowFunc = func() time.Time { return time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC) }
	defer func() { core.NowFunc = time.Now }()

	got, err := f.svc.UpdateWebsite(ctx, p.ID, school.WebsiteConfig{
		WelcomeMessage: "Hello",
		ThemeColor:     "emerald",
		Notifications: []school.Notification{
			{Title: "Admissions open"},
			{ID: "n1", Title: "Exams", Date: "2025-07-01"},
		},
	})
	require.NoError(t, err)

	require.Len(t, got.Website.Notifications, 2)
	assert.NotEmpty(t, got.Website.Notifications[0].ID)
	assert.Equal(t, "2025-06-03", got.Website.Notifications[0].Date)
	assert.Equal(t, school.Notification{ID: "n1", Title: "Exams", Date: "2025-07-01"}, got.Website.Notifications[1])
	assert.Equal(t, p.Website.LogoURL, got.Website.LogoURL)
	assert.Equal(t, "emerald", got.Website.ThemeColor)
}

func TestService_Uploads(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := testutil.CreateSchool(t, f.repo, f.usrRepo, user.User{}, "Green Valley School", "greenvalley7")

	got, err := f.svc.UploadSignature(ctx, p.ID, strings.NewReader("sig"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/schools/greenvalley7/signature.png", got.SignatureURL)

	got, err = f.svc.UploadLogo(ctx, p.ID, strings.NewReader("logo"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/schools/"+p.ID+"/logo.png", got.Website.LogoURL)
	assert.Equal(t, "/media/schools/greenvalley7/signature.png", got.SignatureURL)

	info, err := f.store.Head(ctx, "schools/greenvalley7/signature.png")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	owner := testutil.CreateUser(t, f.usrRepo, "head@school.test", "", user.RoleSchoolAdmin, true)
	p := testutil.CreateSchool(t, f.repo, f.usrRepo, owner, "Green Valley School", "greenvalley7")
	_, err := f.svc.UploadSignature(ctx, p.ID, strings.NewReader("sig"), "image/png")
	require.NoError(t, err)
	_, err = f.svc.UploadLogo(ctx, p.ID, strings.NewReader("logo"), "image/png")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID))

	assert.Equal(t, []string{p.ID}, f.purged)
	_, err = f.svc.Get(ctx, p.ID)
	assert.True(t, core.IsNotFound(err))
	files, err := f.store.List(ctx, "schools/")
	require.NoError(t, err)
	assert.Empty(t, files)
	usr, err := f.usrSvc.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, usr.HasSchool())

	assert.True(t, core.IsNotFound(f.svc.Delete(ctx, p.ID)))
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	testutil.CreateSchool(t, f.repo, f.usrRepo, user.User{}, "Green Valley School", "greenvalley7")
	testutil.CreateSchool(t, f.repo, f.usrRepo, user.User{}, "Delhi Public School", "delhipublic3")

	got, err := f.svc.Query(ctx, school.QueryFilter{Search: "valley"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "greenvalley7", got[0].Slug)

	got, err = f.svc.Query(ctx, school.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
