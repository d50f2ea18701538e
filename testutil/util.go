// Package testutil holds the fixtures shared by the package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/rollstatement"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/user"
)

// NewConfig returns a TEST configuration that does not read the environment.
func NewConfig() *core.Config {
	conf := core.NewTestConfig()
	conf.SecretKey = "secret"
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Undo.Window = time.Hour
	return conf
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	admission.InitValidators(validate, translator)
	rollstatement.InitValidators(validate, translator)
	return validate, translator
}

// Logger records the messages logged at the error level.
type Logger struct {
	mu     sync.Mutex
	errors []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) Debug(string, ...interface{}) {}
func (l *Logger) Info(string, ...interface{})  {}
func (l *Logger) Warn(string, ...interface{})  {}
func (l *Logger) Fatal(string, ...interface{}) {}

func (l *Logger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *Logger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	email, pwd, role string,
	approved bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Email:      email,
		Role:       role,
		IsApproved: approved,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateSchool stores a Primary school named name and links it to owner.
func CreateSchool(t *testing.T, repo school.Repository, usrRepo user.Repository, owner user.User, name, slug string) school.Profile {
	now := time.Now().UTC()
	p, err := repo.CreateSchool(context.Background(), school.Profile{
		OwnerUID:       owner.ID,
		Name:           name,
		Zone:           "Zone 1",
		District:       "Kupwara",
		State:          "Jammu & Kashmir",
		UDISECode:      "01020304050",
		Type:           school.TypePrimary,
		Management:     school.ManagementGovt,
		HeadmasterName: "A. Rather",
		Slug:           slug,
		Website: school.WebsiteConfig{
			WelcomeMessage: "Welcome to " + name,
			Abbreviation:   school.Abbreviation(name),
			Facilities:     []string{},
			ThemeColor:     school.DefaultThemeColor,
			Notifications:  []school.Notification{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSchool() failed: %v", err)
	}
	if owner.ID != "" {
		owner.SchoolID = p.ID
		if _, err = usrRepo.UpdateUser(context.Background(), owner); err != nil {
			t.Fatalf("CreateSchool() failed: %v", err)
		}
	}
	return p
}

func CreateStudent(t *testing.T, repo student.Repository, schoolID, name, rollNo, class, gender string, createdAt ...time.Time) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s, err := repo.CreateStudent(context.Background(), student.Student{
		SchoolID: schoolID,
		Fields: student.Fields{
			Name:       name,
			RollNo:     rollNo,
			Class:      class,
			FatherName: "Father of " + name,
			Gender:     gender,
			DOB:        "2015-04-12",
		},
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}
