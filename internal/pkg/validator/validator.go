// Package validator wraps the go-playground/validator library with thread-safe
// initialization and standardized error formatting. Structs are validated
// through their `validate:"..."` tags; failures are reported as a multi-error
// chain rooted at ErrValidation.
package validator

import (
	"errors"
	"fmt"
	"sync"

	gvalidator "github.com/go-playground/validator/v10"
)

var (
	validator         *gvalidator.Validate
	initValidatorOnce sync.Once
)

// ErrValidation is the first error in the chain whenever validation fails,
// so callers can branch on errors.Is without parsing field messages.
var ErrValidation = errors.New("validation error")

// errStringFormat describes a single failed field.
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

// Init initializes the validator once, enabling required-field validation on
// structs. Safe to call from multiple packages; only the first call matters.
func Init() {
	initValidatorOnce.Do(func() {
		validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
	})
}

// formatError converts raw validator errors into a readable multi-error chain
// rooted at ErrValidation. Non-validation errors pass through unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidation}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks the struct against its validation tags. It returns nil when
// every field passes, and otherwise an error chain starting with ErrValidation
// followed by one formatted message per failed field.
func Validate(v any) error {
	Init()

	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
