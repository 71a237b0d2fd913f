package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared struct validator with the project's custom
// rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("epoch", isValidEpoch)
	})
	return validate
}

// isValidEpoch rejects negative timestamps. Zero is allowed because missing or
// malformed epochs decode to zero.
func isValidEpoch(fl validator.FieldLevel) bool {
	return fl.Field().Float() >= 0
}

// IsMinimumKeystrokes checks the caller-side keystroke policy.
func IsMinimumKeystrokes(count, minimum int) bool {
	return minimum <= 0 || count >= minimum
}
