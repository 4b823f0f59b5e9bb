package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	bookCodeRE = regexp.MustCompile(`^[0-9a-f]{10}$`)
)

// bookCodeValidator ensures the value looks like an allocated book code (10
// lowercase hex characters) or the empty string. The empty string is allowed
// so the validator can be combined with omitempty on optional fields; add
// `required` to the validate tag when the code must be present.
func bookCodeValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return bookCodeRE.MatchString(value)
}
