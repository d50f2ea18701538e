package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightloop/brightloop/core"
)

// Roles
const (
	// RoleAdmin administers the whole system: approves accounts, manages schools.
	RoleAdmin = "admin"
	// RoleSchoolAdmin is the principal/headmaster managing one school.
	RoleSchoolAdmin = "school_admin"
)

var (
	AllRoles = []string{RoleAdmin, RoleSchoolAdmin}

	Roles = []Role{
		{Name: "School Admin", Value: RoleSchoolAdmin},
		{Name: "System Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsApproved   bool      `json:"isApproved"`
	SchoolID     string    `json:"schoolId"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
	LastLogin    time.Time `json:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// HasSchool reports whether the user manages a school already.
func (u User) HasSchool() bool { return u.SchoolID != "" }

// NewUser contains information needed to sign up.
type NewUser struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// UpdateUser defines what a system admin may change on an account.
type UpdateUser struct {
	IsApproved *bool  `json:"isApproved"`
	Role       string `json:"role" validate:"omitempty,role"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Role = core.CleanString(uu.Role, true /* lower */)
	return validate.Struct(uu)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type QueryFilter struct {
	Search     string `query:"search"`
	Role       string `query:"role"`
	IsApproved *bool  `query:"is_approved"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}

// Match reports whether usr satisfies every set field of the filter.
// Search does a case-insensitive match on the email.
func (qf QueryFilter) Match(usr User) bool {
	if qf.Search != "" && !core.ContainsFold(usr.Email, qf.Search) {
		return false
	}
	if qf.Role != "" && usr.Role != qf.Role {
		return false
	}
	if qf.IsApproved != nil && usr.IsApproved != *qf.IsApproved {
		return false
	}
	return true
}
