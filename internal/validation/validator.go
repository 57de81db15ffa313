// Package validation checks submitted forms with go-playground/validator and
// the account and slug rules shared by the HTTP layer and the admin tool.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"yatube/internal/models"

	"github.com/go-playground/validator/v10"
)

// RequiredMessage is reported for empty or whitespace-only required fields.
const RequiredMessage = "This field is required."

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator with the custom rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("maxrunes", func(fl validator.FieldLevel) bool {
			var limit int
			if _, err := fmt.Sscanf(fl.Param(), "%d", &limit); err != nil {
				return false
			}
			return utf8.RuneCountInString(fl.Field().String()) <= limit
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
		_ = validate.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
			return ValidateEmail(fl.Field().String()) == nil
		})
	})

	return validate
}

// ValidateStruct validates s and reports failures as a VALIDATION_ERROR keyed by json field name.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return models.NewInternalError(err)
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = translateError(fe)
	}
	return models.NewFormValidationError(fields)
}

func translateError(fe validator.FieldError) string {
	value, _ := fe.Value().(string)

	switch fe.Tag() {
	case "required", "notblank":
		return RequiredMessage
	case "max", "maxrunes":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).",
			fe.Param(), utf8.RuneCountInString(value))
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "username":
		return messageOf(ValidateUsername(value))
	case "password":
		return messageOf(ValidatePassword(value))
	case "emailaddr", "email":
		return messageOf(ValidateEmail(value))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func messageOf(err error) string {
	if err == nil {
		return "invalid value"
	}
	return err.Error()
}
