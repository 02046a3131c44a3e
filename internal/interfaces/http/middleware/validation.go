package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures gin's validator to report field names by
// their json (or form) tag, so validation errors match the wire format
// clients actually send.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// BindingErrorMessage renders a binding failure as a client-facing
// message. Validator errors are summarized per field; anything else
// (malformed JSON, type mismatches) falls back to the raw error text.
func BindingErrorMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		parts = append(parts, e.Field()+": "+validationMessage(e))
	}
	return strings.Join(parts, "; ")
}

// validationMessage returns a human-readable message for one failed rule
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "min":
		if e.Type().Kind() == reflect.String || e.Type().Kind() == reflect.Slice {
			return "must have at least " + e.Param() + " items or characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String || e.Type().Kind() == reflect.Slice {
			return "must have at most " + e.Param() + " items or characters"
		}
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "uuid":
		return "invalid UUID format"
	case "email":
		return "invalid email format"
	case "dive":
		return "invalid element"
	default:
		return "invalid value"
	}
}
