package admission

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/words"
)

const (
	DefaultCategory = "OM"
	DefaultPageSize = 9
)

var Categories = []string{"OM", "ST", "SC", "OBC", "RBA", "Other"}

// Fields are the contents of an admission form, grouped as on the printed form.
type Fields struct {
	// school
	SchoolName       string `json:"schoolName" validate:"required,notblank"`
	Zone             string `json:"zone"`
	District         string `json:"district"`
	State            string `json:"state"`
	UDISECode        string `json:"udiseCode"`
	SchoolEmail      string `json:"schoolEmail" validate:"omitempty,email"`
	SchoolManagement string `json:"schoolManagement" validate:"omitempty,oneof=GOVT PRIVATE"`
	SchoolRegNo      string `json:"schoolRegNo"`
	Session          string `json:"session" validate:"required,notblank"`
	AdmissionDate    string `json:"admissionDate" validate:"omitempty,date"`

	// student
	FullName string `json:"fullName" validate:"required,notblank"`
	DOB      string `json:"dob" validate:"required,date"`
	DOBWords string `json:"dobWords"`
	Aadhaar  string `json:"aadhaar" validate:"required,digits=12"`
	Category string `json:"category" validate:"required,category"`
	Photo    string `json:"photo,omitempty"`

	// parents
	FatherName  string `json:"fatherName" validate:"required,notblank"`
	MotherName  string `json:"motherName" validate:"required,notblank"`
	GuardianOcc string `json:"guardianOcc"`
	Residence   string `json:"residence" validate:"required,notblank"`

	// history
	LastSchool string `json:"lastSchool"`
	LastClass  string `json:"lastClass"`
	CertNumber string `json:"certNumber"`
	PenNo      string `json:"penNo"`

	// contact & bank
	Phone       string `json:"phone" validate:"required,digits=10"`
	BankAccount string `json:"bankAccount" validate:"required,digits=9-18"`
	IFSC        string `json:"ifsc" validate:"required,len=11"`
	BankName    string `json:"bankName"`

	// admission
	AdmissionClass string `json:"admissionClass" validate:"required,admissionclass"`
	AdmissionNo    string `json:"admissionNo" validate:"required,notblank"`
}

type Form struct {
	ID       string `json:"id"`
	SchoolID string `json:"schoolId"`
	Fields
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// Detail is a form along with the student's age projection at Class 10.
type Detail struct {
	Form
	NEP *AgeProjection `json:"nep"`
}

func NewDetail(f Form) Detail {
	return Detail{Form: f, NEP: CalculateNEPAge(f.DOB, f.Session, f.AdmissionClass)}
}

// Normalize trims every field, upper-cases names and codes, strips spaces out of
// numbers and recomputes the date of birth in words.
func (f *Fields) Normalize() {
	upper := cases.Upper(language.English)
	for _, s := range []*string{
		&f.SchoolName, &f.Zone, &f.District, &f.State, &f.UDISECode, &f.SchoolRegNo, &f.Session,
		&f.AdmissionDate, &f.DOB, &f.Category, &f.GuardianOcc, &f.Residence, &f.LastSchool,
		&f.LastClass, &f.CertNumber, &f.BankName, &f.AdmissionClass, &f.AdmissionNo,
	} {
		*s = core.CleanString(*s)
	}
	f.SchoolEmail = core.CleanString(f.SchoolEmail, true /* lower */)
	f.SchoolManagement = strings.ToUpper(core.CleanString(f.SchoolManagement))
	for _, s := range []*string{&f.FullName, &f.FatherName, &f.MotherName, &f.IFSC, &f.PenNo} {
		*s = upper.String(core.CleanString(*s))
	}
	for _, s := range []*string{&f.Aadhaar, &f.Phone, &f.BankAccount} {
		*s = strings.Join(strings.Fields(*s), "")
	}
	if f.SchoolManagement == "" {
		f.SchoolManagement = school.ManagementGovt
	}
	if f.Category == "" {
		f.Category = DefaultCategory
	}
	f.DOBWords = words.DateToWords(f.DOB)
}

func (f *Fields) Validate(validate *validator.Validate) error {
	f.Normalize()
	return validate.Struct(f)
}

// Prefill returns the fields of a new form for a school: the school block comes from
// its profile and the session is the current academic year ("2025-26").
// contactEmail stands in when the school has no website contact email.
func Prefill(p school.Profile, contactEmail string) Fields {
	now := core.NowFunc()
	email := p.Website.ContactEmail
	if email == "" {
		email = contactEmail
	}
	management := p.Management
	if management == "" {
		management = school.ManagementGovt
	}
	return Fields{
		SchoolName:       p.Name,
		Zone:             p.Zone,
		District:         p.District,
		State:            p.State,
		UDISECode:        p.UDISECode,
		SchoolEmail:      email,
		SchoolManagement: management,
		SchoolRegNo:      p.RegNo,
		Session:          CurrentSession(now),
		AdmissionDate:    now.Format(core.DateLayout),
		Category:         DefaultCategory,
	}
}

// CurrentSession formats the academic session starting in the year of t ("2025-26").
func CurrentSession(t time.Time) string {
	return fmt.Sprintf("%d-%02d", t.Year(), (t.Year()+1)%100)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() { qf.Search = core.CleanString(qf.Search) }

// Match does a case-insensitive match on the student's full name and the admission number.
func (qf QueryFilter) Match(f Form) bool {
	return qf.Search == "" ||
		core.ContainsFold(f.FullName, qf.Search) ||
		core.ContainsFold(f.AdmissionNo, qf.Search)
}
