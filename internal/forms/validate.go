// Package forms binds the dashboard's HTML forms to validation schemas and
// implements the shared submit contract: invalid input never reaches the
// backend, a rejected mutation keeps the form populated, and a successful
// one invalidates the affected cached queries.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("form")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Errors maps a form field name to its inline message.
type Errors map[string]string

// Any reports whether at least one field failed.
func (e Errors) Any() bool { return len(e) > 0 }

// Get returns the message of field, or "".
func (e Errors) Get(field string) string { return e[field] }

// check validates s and renders the failures with the given field labels.
func check(s any, labels map[string]string) Errors {
	out := Errors{}
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		out["_form"] = err.Error()
		return out
	}
	for _, fe := range ves {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		label := labels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		out[fe.Field()] = message(fe, label)
	}
	return out
}

func message(fe validator.FieldError, label string) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_if":
		return label + " is required"
	case "min":
		if text {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if text {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "alphanum":
		return label + " must contain only letters and digits"
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "number", "numeric":
		return label + " must be a number"
	case "len":
		return fmt.Sprintf("%s must be %s characters", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or later", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or earlier", label, fe.Param())
	}
	return label + " is invalid"
}
