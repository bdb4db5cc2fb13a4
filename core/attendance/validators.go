package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/campusbridge/backend/core"
)

var (
	statusTag  = "attendancestatus"
	statusText = "invalid attendance status"
)

// InitValidators registers the attendance validations on the app validator.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func statusValidation(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, s := range AllStatuses {
		if status == s {
			return true
		}
	}
	return false
}
