package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// EmailPattern accepts local@domain.tld with no whitespace and no extra @.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// New returns a validator with the "emailshape" tag registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return EmailPattern.MatchString(fl.Field().String())
	})
	return v
}

// FailedTag reports the tag of the first failed field constraint, or "" when
// err is not a validation error.
func FailedTag(err error) (field, tag string) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "", ""
	}
	return verrs[0].Field(), verrs[0].Tag()
}

// HasTag reports whether any failed constraint in err carries tag.
func HasTag(err error, tag string) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
