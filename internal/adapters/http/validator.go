package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"authgate/internal/core/auth"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields under their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notcommon", func(fl validator.FieldLevel) bool {
		return !auth.IsCommonPassword(fl.Field().String())
	})

	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return len(strings.TrimSpace(fl.Field().String())) >= 2
	})

	return v
}

func ValidateStruct(payload any) map[string][]string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	errors := make(map[string][]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			field := fieldError.Field()
			errors[field] = append(errors[field], messageFor(fieldError))
		}
	}

	return errors
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("This field must be at least %s characters long.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	case "notcommon":
		return "This password is too common."
	case "fullname":
		return "Full name must be at least 2 characters long."
	default:
		return "This field is invalid."
	}
}
