package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "cadence/internal/platform/errors"
)

var (
	instance = newValidator()

	dateKeyTag   = "datekey"
	dateKeyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in messages instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation(dateKeyTag, func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || dateKeyRegex.MatchString(value)
	})
	return v
}

// Struct validates s against its `validate` tags. Failures are reported as
// one message per field and wrap apperrors.ErrInvalidInput.
func Struct(s any) error {
	err := instance.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describe(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, strings.Join(parts, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gtefield", "ltefield":
		return fmt.Sprintf("%s is inconsistent with %s", fe.Field(), fe.Param())
	case dateKeyTag:
		return fe.Field() + " must be a YYYY-MM-DD date"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
