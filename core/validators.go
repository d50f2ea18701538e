package core

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const DateLayout = "2006-01-02"

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	// digits=12 or digits=9-18
	digitsTag  = "digits"
	digitsText = "must contain {0} digits"

	dateTag  = "date"
	dateText = "must be a valid date (YYYY-MM-DD)"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(digitsTag, digitsValidation)
	_ = validate.RegisterTranslation(
		digitsTag, translator,
		func(t ut.Translator) error { return t.Add(digitsTag, digitsText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(digitsTag, fe.Param())
			return s
		},
	)

	_ = validate.RegisterValidation(dateTag, dateValidation)
	RegisterCustomTranslation(validate, translator, dateTag, dateText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// digitsValidation checks that the field only holds digits, either exactly N of them
// (digits=N) or between A and B of them (digits=A-B).
func digitsValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" || OnlyDigits(val) != val {
		return false
	}
	min, max, ok := parseDigitsParam(fl.Param())
	if !ok {
		return false
	}
	return len(val) >= min && len(val) <= max
}

func parseDigitsParam(param string) (min, max int, ok bool) {
	parts := strings.SplitN(param, "-", 2)
	min, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	max = min
	if len(parts) == 2 {
		if max, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, false
		}
	}
	return min, max, true
}

// dateValidation accepts calendar dates formatted as YYYY-MM-DD.
func dateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}
