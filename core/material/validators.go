package material

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/campusbridge/backend/core"
)

var (
	typeTag  = "materialtype"
	typeText = "invalid material type"
)

// InitValidators registers the material validations on the app validator.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(typeTag, typeValidation)
	core.RegisterCustomTranslation(validate, translator, typeTag, typeText)
}

func typeValidation(fl validator.FieldLevel) bool {
	typ, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, t := range AllTypes {
		if typ == t {
			return true
		}
	}
	return false
}
