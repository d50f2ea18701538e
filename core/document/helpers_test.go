package document

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/student"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

func studentFixture() student.Student {
	return student.Student{
		ID:       "s1",
		SchoolID: "school-1",
		Fields: student.Fields{
			Name:       "Aamir Khan",
			RollNo:     "7",
			Class:      "5th",
			FatherName: "Bashir Khan",
			Gender:     student.GenderMale,
			DOB:        "2015-04-02",
		},
	}
}
