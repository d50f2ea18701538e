package user

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("user")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields, newest first.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		CheckUniqueness(email string, excludedIDs ...string) error
		Signup(ctx context.Context, nu NewUser) (User, error)
		Create(ctx context.Context, email, pwd, role string, approved bool) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Query(ctx context.Context, filter QueryFilter) ([]User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		Approve(ctx context.Context, id string, approved bool) (User, error)
		AttachSchool(ctx context.Context, id, schoolID string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		SetPassword(ctx context.Context, usr User, pwd string) (User, error)
		Delete(ctx context.Context, ids ...string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		tokenGen tokenGenerator
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		tokenGen: newTokenGenerator(conf),
		conf:     conf,
	}
}

func (svc *service) CheckUniqueness(email string, excludedIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excludedIDs...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Signup registers a school admin account. It cannot be used before a system admin approves it.
func (svc *service) Signup(ctx context.Context, nu NewUser) (User, error) {
	return svc.Create(ctx, nu.Email, nu.Password, RoleSchoolAdmin, false)
}

func (svc *service) Create(ctx context.Context, email, pwd, role string, approved bool) (User, error) {
	now := core.NowFunc().UTC()
	usr := User{
		Email:      core.CleanString(email, true /* lower */),
		Role:       role,
		IsApproved: approved,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	approving := uu.IsApproved != nil && *uu.IsApproved && !usr.IsApproved
	if uu.IsApproved != nil {
		usr.IsApproved = *uu.IsApproved
	}
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	usr, err = svc.save(ctx, usr)
	if err != nil {
		return User{}, err
	}
	if approving {
		svc.sendApprovalMail(usr)
	}
	return usr, nil
}

func (svc *service) Approve(ctx context.Context, id string, approved bool) (User, error) {
	return svc.Update(ctx, id, UpdateUser{IsApproved: &approved})
}

// AttachSchool links the user to the school they manage. An empty schoolID unlinks it.
func (svc *service) AttachSchool(ctx context.Context, id, schoolID string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.SchoolID = schoolID
	return svc.save(ctx, usr)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = core.NowFunc().UTC()
	return svc.save(ctx, usr)
}

func (svc *service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.save(ctx, usr)
}

func (svc *service) save(ctx context.Context, usr User) (User, error) {
	usr.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := svc.tokenGen.makeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making password reset token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:              []mail.Address{{Address: usr.Email}},
		Subject:         "Password Reset",
		TemplateName:    "password_reset",
		FrontendBaseURL: svc.conf.FrontendBaseURL,
		TemplateData: map[string]string{
			"UID":   EncodeUID(usr),
			"Token": token,
		},
	})
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = svc.tokenGen.verifyToken(usr, data.Token); err != nil {
		return core.NewValidationError(err)
	}
	_, err = svc.SetPassword(ctx, usr, data.Password)
	return err
}

func (svc *service) sendApprovalMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:              []mail.Address{{Address: usr.Email}},
		Subject:         "Your account has been approved",
		TemplateName:    "account_approved",
		FrontendBaseURL: svc.conf.FrontendBaseURL,
		TemplateData:    map[string]string{"Email": usr.Email},
	})
}
