package school

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/brightloop/brightloop/core"
)

var (
	schoolTypeTag  = "schooltype"
	schoolTypeText = "invalid school type"

	managementTag  = "management"
	managementText = "must be GOVT or PRIVATE"

	themeColorTag  = "themecolor"
	themeColorText = "unknown theme color"

	facilityTag  = "facility"
	facilityText = "unknown facility"

	classNameTag  = "classname"
	classNameText = "unknown class"
)

// InitValidators registers the school validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(schoolTypeTag, func(fl validator.FieldLevel) bool {
		t := Type(fl.Field().String())
		for _, at := range AllTypes {
			if t == at {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, schoolTypeTag, schoolTypeText)

	_ = validate.RegisterValidation(managementTag, oneOf(AllManagements))
	core.RegisterCustomTranslation(validate, translator, managementTag, managementText)

	_ = validate.RegisterValidation(themeColorTag, oneOf(ThemeColors))
	core.RegisterCustomTranslation(validate, translator, themeColorTag, themeColorText)

	_ = validate.RegisterValidation(facilityTag, oneOf(Facilities))
	core.RegisterCustomTranslation(validate, translator, facilityTag, facilityText)

	_ = validate.RegisterValidation(classNameTag, func(fl validator.FieldLevel) bool {
		return IsKnownClass(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, classNameTag, classNameText)
}

func oneOf(choices []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, c := range choices {
			if val == c {
				return true
			}
		}
		return false
	}
}
