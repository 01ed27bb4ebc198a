package accountdelivery

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// NotBlank validates that a string field has at least one non whitespace character.
var NotBlank validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}
