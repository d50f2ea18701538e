package document

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/student"
)

// Study statuses printed on a date of birth certificate.
const (
	StatusReading    = "is reading"
	StatusWasReading = "was reading"
	StatusPassed     = "passed"
)

var (
	Statuses = []string{StatusReading, StatusWasReading, StatusPassed}

	errInvalidStatus = errors.New("must be one of is reading, was reading or passed")
)

// Certificate holds what a date of birth certificate says about a student.
type Certificate struct {
	StudentName   string `json:"studentName" validate:"required,notblank"`
	FatherName    string `json:"fatherName" validate:"required,notblank"`
	MotherName    string `json:"motherName" validate:"required_with=IncludeMother"`
	IncludeMother bool   `json:"includeMother"`
	Gender        string `json:"gender" validate:"required,oneof=Male Female Other"`
	DOB           string `json:"dob" validate:"required,date"`
	Class         string `json:"class" validate:"required,notblank"`
	RollNo        string `json:"rollNo"`
	Address       string `json:"address"`
	AdmissionNo   string `json:"admissionNo"`
	RefNo         string `json:"refNo"`
	IssueDate     string `json:"issueDate" validate:"required,date"`
	Status        string `json:"status" validate:"required"`
	Session       string `json:"session" validate:"required,notblank"`
}

// NewCertificate fills a certificate from the register: the student is reading in the
// current session, the certificate is issued today and names both parents.
func NewCertificate(s student.Student) Certificate {
	now := core.NowFunc()
	return Certificate{
		StudentName:   s.Name,
		FatherName:    s.FatherName,
		IncludeMother: true,
		Gender:        s.Gender,
		DOB:           s.DOB,
		Class:         s.Class,
		RollNo:        s.RollNo,
		Address:       s.Address,
		AdmissionNo:   s.AdmissionNo,
		IssueDate:     now.Format(core.DateLayout),
		Status:        StatusReading,
		Session:       admission.CurrentSession(now),
	}
}

func (c *Certificate) Clean() {
	for _, s := range []*string{
		&c.StudentName, &c.FatherName, &c.MotherName, &c.DOB, &c.Class, &c.RollNo, &c.Address,
		&c.AdmissionNo, &c.RefNo, &c.IssueDate, &c.Session,
	} {
		*s = core.CleanString(*s)
	}
	c.Status = core.CleanString(c.Status, true /* lower */)
	if c.Status == "" {
		c.Status = StatusReading
	}
	if c.IssueDate == "" {
		c.IssueDate = core.NowFunc().Format(core.DateLayout)
	}
	if !c.IncludeMother {
		c.MotherName = ""
	}
}

func (c *Certificate) Validate(validate *validator.Validate) error {
	c.Clean()
	if err := validate.Struct(c); err != nil {
		return err
	}
	for _, s := range Statuses {
		if c.Status == s {
			return nil
		}
	}
	return core.NewValidationError(errInvalidStatus, core.FieldError{Field: "status", Error: errInvalidStatus.Error()})
}

// Relation introduces the parents of the student: "Daughter of" for girls, "Son of" otherwise.
func Relation(gender string) string {
	if gender == student.GenderFemale {
		return "Daughter of"
	}
	return "Son of"
}

func Pronoun(gender string) string {
	if gender == student.GenderFemale {
		return "Her"
	}
	return "His"
}
