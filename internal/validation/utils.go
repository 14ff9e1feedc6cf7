// Package validation binds request input and turns validation failures
// into 400 responses with per-field errors.
//
// Request types declare their rules with go-playground/validator struct
// tags and expose them through Validatable.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/coursehub/internal/errs"
	"github.com/go-playground/validator/v10"
)

// fieldErrors converts err into client-facing field errors.
func fieldErrors(err error) []errs.FieldError {
	var out []errs.FieldError

	switch e := err.(type) {
	case validator.ValidationErrors:
		for _, fe := range e {
			out = append(out, errs.FieldError{
				Field: fieldPath(fe),
				Error: describe(fe),
			})
		}
	default:
		out = append(out, errs.FieldError{Field: "", Error: err.Error()})
	}

	return out
}

// fieldPath drops the request type from the namespace, so a failing
// video url reads "videos[0].urls".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
