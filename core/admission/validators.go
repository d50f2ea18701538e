package admission

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
)

var (
	categoryTag  = "category"
	categoryText = "must be one of OM, ST, SC, OBC, RBA or Other"

	admissionClassTag  = "admissionclass"
	admissionClassText = "not a class students can be admitted to"
)

// InitValidators registers the admission validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		return contains(Categories, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(admissionClassTag, func(fl validator.FieldLevel) bool {
		return contains(school.AdmissionClasses, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, admissionClassTag, admissionClassText)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
