package school

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/blob"
	"github.com/brightloop/brightloop/core/user"
)

const maxSlugAttempts = 10

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("school")
	ErrNotApproved    = errors.New("account is awaiting approval")
	ErrSlugExhausted  = errors.New("could not generate a unique slug")
	ErrNotSchoolAdmin = errors.New("only school admins can set up a school")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, p Profile) (Profile, error)
		GetSchoolByID(ctx context.Context, id string) (Profile, error)
		GetSchoolBySlug(ctx context.Context, slug string) (Profile, error)
		// FilterSchools returns the schools matching filter, newest first.
		FilterSchools(ctx context.Context, filter QueryFilter) ([]Profile, error)
		UpdateSchool(ctx context.Context, p Profile) (Profile, error)
		DeleteSchool(ctx context.Context, id string) error
	}

	// Purger deletes the records a school owns in another collection.
	Purger func(ctx context.Context, schoolID string) error

	Service interface {
		Setup(ctx context.Context, owner user.User, data ProfileData) (Profile, error)
		Get(ctx context.Context, id string) (Profile, error)
		GetBySlug(ctx context.Context, slug string) (Profile, error)
		Query(ctx context.Context, filter QueryFilter) ([]Profile, error)
		UpdateProfile(ctx context.Context, id string, data ProfileData) (Profile, error)
		UpdateWebsite(ctx context.Context, id string, wc WebsiteConfig) (Profile, error)
		UploadSignature(ctx context.Context, id string, r io.Reader, contentType string) (Profile, error)
		UploadLogo(ctx context.Context, id string, r io.Reader, contentType string) (Profile, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		store   blob.Store
		conf    *core.Config
		purgers []Purger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, store blob.Store, conf *core.Config, purgers ...Purger) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		store:   store,
		conf:    conf,
		purgers: purgers,
	}
}

// Setup creates the school managed by owner, or updates it when owner has one already.
func (svc *service) Setup(ctx context.Context, owner user.User, data ProfileData) (Profile, error) {
	if owner.Role != user.RoleSchoolAdmin {
		return Profile{}, core.NewValidationError(ErrNotSchoolAdmin)
	}
	if !owner.IsApproved {
		return Profile{}, core.NewValidationError(ErrNotApproved)
	}
	if owner.HasSchool() {
		if _, err := svc.repo.GetSchoolByID(ctx, owner.SchoolID); err == nil {
			return svc.UpdateProfile(ctx, owner.SchoolID, data)
		} else if !core.IsNotFound(err) {
			return Profile{}, errors.Wrap(err, "finding owner's school")
		}
	}

	slug, err := svc.uniqueSlug(ctx, data.Name)
	if err != nil {
		return Profile{}, err
	}
	now := core.NowFunc().UTC()
	p := Profile{
		OwnerUID: owner.ID,
		Slug:     slug,
		Website: WebsiteConfig{
			WelcomeMessage: fmt.Sprintf("Welcome to %s", data.Name),
			Abbreviation:   Abbreviation(data.Name),
			Facilities:     []string{},
			ThemeColor:     DefaultThemeColor,
			Notifications:  []Notification{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	data.apply(&p)

	p, err = svc.repo.CreateSchool(ctx, p)
	if err != nil {
		return Profile{}, errors.Wrap(err, "creating school")
	}
	if _, err = svc.usrSvc.AttachSchool(ctx, owner.ID, p.ID); err != nil {
		return Profile{}, errors.Wrap(err, "attaching school to owner")
	}
	return p, nil
}

func (svc *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	for i := 0; i < maxSlugAttempts; i++ {
		slug := NewSlug(name)
		_, err := svc.repo.GetSchoolBySlug(ctx, slug)
		if core.IsNotFound(err) {
			return slug, nil
		}
		if err != nil {
			return "", errors.Wrap(err, "checking slug")
		}
	}
	return "", ErrSlugExhausted
}

func (svc *service) Get(ctx context.Context, id string) (Profile, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *service) GetBySlug(ctx context.Context, slug string) (Profile, error) {
	return svc.repo.GetSchoolBySlug(ctx, core.CleanString(slug, true /* lower */))
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Profile, error) {
	return svc.repo.FilterSchools(ctx, filter)
}

func (svc *service) UpdateProfile(ctx context.Context, id string, data ProfileData) (Profile, error) {
	p, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	data.apply(&p)
	return svc.save(ctx, p)
}

// UpdateWebsite replaces the website configuration. New notifications get an id.
// The logo is only changed through UploadLogo.
func (svc *service) UpdateWebsite(ctx context.Context, id string, wc WebsiteConfig) (Profile, error) {
	p, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	for i := range wc.Notifications {
		if wc.Notifications[i].ID == "" {
			wc.Notifications[i].ID = uuid.NewString()
		}
		if wc.Notifications[i].Date == "" {
			wc.Notifications[i].Date = core.NowFunc().Format(core.DateLayout)
		}
	}
	wc.LogoURL = p.Website.LogoURL
	p.Website = wc
	return svc.save(ctx, p)
}

func (svc *service) UploadSignature(ctx context.Context, id string, r io.Reader, contentType string) (Profile, error) {
	p, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	key := fmt.Sprintf("schools/%s/signature.png", p.Slug)
	if _, err = svc.store.Put(ctx, key, r, blob.PutOptions{ContentType: contentType}); err != nil {
		return Profile{}, errors.Wrap(err, "storing signature")
	}
	p.SignatureURL = blob.URLFor(svc.conf.Blob.PublicBaseURL, key)
	return svc.save(ctx, p)
}

func (svc *service) UploadLogo(ctx context.Context, id string, r io.Reader, contentType string) (Profile, error) {
	p, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	key := fmt.Sprintf("schools/%s/logo.png", p.ID)
	if _, err = svc.store.Put(ctx, key, r, blob.PutOptions{ContentType: contentType}); err != nil {
		return Profile{}, errors.Wrap(err, "storing logo")
	}
	p.Website.LogoURL = blob.URLFor(svc.conf.Blob.PublicBaseURL, key)
	return svc.save(ctx, p)
}

func (svc *service) save(ctx context.Context, p Profile) (Profile, error) {
	p.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateSchool(ctx, p)
}

// Delete removes the school with everything it owns, and unlinks its owner.
func (svc *service) Delete(ctx context.Context, id string) error {
	p, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return err
	}
	for _, purge := range svc.purgers {
		if err = purge(ctx, p.ID); err != nil {
			return errors.Wrap(err, "purging school data")
		}
	}
	for _, prefix := range []string{"schools/" + p.ID + "/", "schools/" + p.Slug + "/"} {
		if _, err = blob.DeletePrefix(ctx, svc.store, prefix); err != nil {
			return errors.Wrap(err, "deleting school files")
		}
	}
	if err = svc.repo.DeleteSchool(ctx, p.ID); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	if p.OwnerUID != "" {
		if _, err = svc.usrSvc.AttachSchool(ctx, p.OwnerUID, ""); err != nil && !core.IsNotFound(err) {
			return errors.Wrap(err, "detaching owner")
		}
	}
	return nil
}
