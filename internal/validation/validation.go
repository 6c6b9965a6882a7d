package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	schoolYearPattern  = regexp.MustCompile(`^\d{4}-\d{4}$`)
	subjectCodePattern = regexp.MustCompile(`^[A-Z0-9-]+$`)
)

// New builds a validator with the domain rules registered. Field names
// in error output follow the JSON tags so clients see payload keys.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Registration cannot fail for a non-nil func; errors ignored as in
	// the validator docs.
	_ = v.RegisterValidation("school_year", func(fl validator.FieldLevel) bool {
		return schoolYearPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("subject_code", func(fl validator.FieldLevel) bool {
		return subjectCodePattern.MatchString(fl.Field().String())
	})

	return v
}

// Messages converts a validator error into one human-readable message
// per violated rule, preserving field order.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, describe(violation))
	}
	return messages
}

func describe(v validator.FieldError) string {
	field := v.Field()
	switch v.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "school_year":
		return fmt.Sprintf("%s must be in format YYYY-YYYY", field)
	case "subject_code":
		return fmt.Sprintf("%s must contain only uppercase letters, numbers, and hyphens", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(v.Param()), ", "))
	case "min":
		if v.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, v.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, v.Param())
	case "max":
		if v.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, v.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, v.Param())
	case "dive":
		return fmt.Sprintf("%s contains an invalid entry", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
