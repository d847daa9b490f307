package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"cetracker/internal/models"
)

// UsernamePattern defines the valid username format: alphanumeric, dots, hyphens, underscores.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return UsernamePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("statecode", func(fl validator.FieldLevel) bool {
		return ValidateStateCode(fl.Field().String())
	})
	return v
}

// Struct validates a request body against its `validate` tags. On failure it
// returns a message suitable for the client.
func Struct(s any) (bool, string) {
	err := validate.Struct(s)
	if err == nil {
		return true, ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return false, "Invalid request"
	}
	return false, message(verrs[0])
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Map || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be negative", field)
	case "username":
		return field + " may only contain letters, numbers, dots, hyphens and underscores"
	case "statecode":
		return fmt.Sprintf("%q is not a valid state code", fe.Value())
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	default:
		return field + " is invalid"
	}
}

// NormalizeStateCode upper-cases and trims a state code.
func NormalizeStateCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateStateCode checks that code is one of the supported two-letter codes.
func ValidateStateCode(code string) bool {
	return slices.Contains(models.StateCodes, NormalizeStateCode(code))
}
