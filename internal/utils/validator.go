package utils

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator, keyed on json field names
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// FieldErrors collects form errors by field name
type FieldErrors map[string][]string

// Add appends a message for a field
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// HasErrors reports whether any field failed
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// Error joins the messages in field order
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], " ")))
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct runs the struct tags and returns field errors, or nil when valid
func ValidateStruct(s interface{}) FieldErrors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors := FieldErrors{}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fieldErrors.Add("__all__", err.Error())
		return fieldErrors
	}

	for _, e := range validationErrors {
		fieldErrors.Add(e.Field(), messageFor(e))
	}
	return fieldErrors
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_with":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", e.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", e.Param())
	case "datetime":
		return "Enter a valid date."
	case "eqfield":
		return "The two password fields didn't match"
	default:
		return fmt.Sprintf("Enter a valid value (%s).", e.Tag())
	}
}
