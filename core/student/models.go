package student

import (
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"

	DefaultPageSize = 10
)

var Genders = []string{GenderMale, GenderFemale, GenderOther}

type Student struct {
	ID       string `json:"id"`
	SchoolID string `json:"schoolId"`
	Fields
	CreatedAt time.Time `json:"createdAt"` // UTC
}

// Fields are the student details editable by the school admin.
type Fields struct {
	Name        string `json:"name" validate:"required,notblank,max=120"`
	RollNo      string `json:"rollNo" validate:"required,notblank,max=20"`
	Class       string `json:"class" validate:"required,classname"`
	Section     string `json:"section" validate:"max=10"`
	FatherName  string `json:"fatherName" validate:"required,notblank,max=120"`
	Gender      string `json:"gender" validate:"required,oneof=Male Female Other"`
	DOB         string `json:"dob" validate:"required,date"`
	Address     string `json:"address"`
	Phone       string `json:"phone" validate:"omitempty,digits=10"`
	AdmissionNo string `json:"admissionNo"`
}

func (f *Fields) Clean() {
	title := cases.Title(language.English)
	f.Name = title.String(core.CleanString(f.Name))
	f.FatherName = title.String(core.CleanString(f.FatherName))
	f.RollNo = core.CleanString(f.RollNo)
	f.Class = core.CleanString(f.Class)
	f.Section = core.CleanString(f.Section)
	f.Gender = core.CleanString(f.Gender)
	f.DOB = core.CleanString(f.DOB)
	f.Address = core.CleanString(f.Address)
	f.Phone = core.OnlyDigits(f.Phone)
	f.AdmissionNo = core.CleanString(f.AdmissionNo)
	if f.Gender == "" {
		f.Gender = GenderMale
	}
}

func (f *Fields) Validate(validate *validator.Validate) error {
	f.Clean()
	return validate.Struct(f)
}

type QueryFilter struct {
	Search  string `query:"search"`
	Class   string `query:"class"`
	Section string `query:"section"`
	Gender  string `query:"gender"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Class = core.CleanString(qf.Class)
	qf.Section = core.CleanString(qf.Section)
	qf.Gender = core.CleanString(qf.Gender)
}

// Match reports whether s satisfies every set field of the filter.
// Search does a case-insensitive match on the name, roll number and father's name.
func (qf QueryFilter) Match(s Student) bool {
	if qf.Search != "" &&
		!core.ContainsFold(s.Name, qf.Search) &&
		!core.ContainsFold(s.RollNo, qf.Search) &&
		!core.ContainsFold(s.FatherName, qf.Search) {
		return false
	}
	if qf.Class != "" && s.Class != qf.Class {
		return false
	}
	if qf.Section != "" && !core.ContainsFold(s.Section, qf.Section) {
		return false
	}
	if qf.Gender != "" && s.Gender != qf.Gender {
		return false
	}
	return true
}

// Sort orders the register by class (lowest first), then by numeric roll number.
func Sort(students []Student) {
	sort.SliceStable(students, func(i, j int) bool {
		ci, cj := school.ClassOrder(students[i].Class), school.ClassOrder(students[j].Class)
		if ci != cj {
			return ci < cj
		}
		return rollNumber(students[i].RollNo) < rollNumber(students[j].RollNo)
	})
}

func rollNumber(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ClassCount holds the number of boys and girls registered in a class.
type ClassCount struct {
	Boys  int `json:"boys"`
	Girls int `json:"girls"`
}
