package assignment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/campusbridge/backend/core"
)

var (
	submissionTypeTag  = "submissiontype"
	submissionTypeText = "invalid submission type"
)

// InitValidators registers the assignment validations on the app validator.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(submissionTypeTag, submissionTypeValidation)
	core.RegisterCustomTranslation(validate, translator, submissionTypeTag, submissionTypeText)
}

func submissionTypeValidation(fl validator.FieldLevel) bool {
	typ, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, t := range AllSubmissionTypes {
		if typ == t {
			return true
		}
	}
	return false
}
