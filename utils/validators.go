package utils

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validate is shared by the use-case layer for note form checks. It reads the
// same `binding` tags gin's engine does.
var Validate = NewValidator()

func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterCustomValidators(v)
	return v
}

func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("notblank", ValidateNotBlankRule)
}

// InitValidator registers the custom rules on gin's binding engine, so
// ShouldBind enforces them. Call it before serving.
func InitValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterCustomValidators(v)
	}
}

func ValidateNotBlankRule(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
