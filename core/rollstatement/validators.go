package rollstatement

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/brightloop/brightloop/core"
)

var (
	monthTag  = "month"
	monthText = "must be the name of a month"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(monthTag, func(fl validator.FieldLevel) bool {
		return isMonth(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, monthTag, monthText)
}
