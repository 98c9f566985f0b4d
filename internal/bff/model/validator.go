package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator. Field errors are reported
// under their query or JSON parameter name.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(paramName)
	})
	return validate
}

func paramName(f reflect.StructField) string {
	for _, tag := range []string{"query", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// FormatValidationError turns the first failing field into a bad_request
// ErrorResponse.
func FormatValidationError(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrorResponse{Code: "bad_request", Message: err.Error()}
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fe.Field() + " is required"
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
	return &ErrorResponse{Code: "bad_request", Message: msg}
}
