// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package validation wraps go-playground/validator with a shared instance,
// the project's custom tags and human-readable error messages.
//
//	type SignupRequest struct {
//	    Email    string `json:"email" validate:"required,email,max=254"`
//	    Username string `json:"username" validate:"required,username"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
//
// Field names in errors are the JSON names, so messages match what clients send.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrorCode is the API error code for failed request validation.
const ErrorCode = "VALIDATION_FAILED"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	usernamePattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{2,63}$`)
	searchTermPattern = regexp.MustCompile(`^[\p{L}\p{N} '&(),.-]{1,100}$`)
)

// ValidationError is a single failed field.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the JSON field name.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the failed validation tag.
func (e *ValidationError) Tag() string { return e.tag }

// Param returns the tag parameter, such as "8" for min=8.
func (e *ValidationError) Param() string { return e.param }

// Value returns the rejected value.
func (e *ValidationError) Value() interface{} { return e.value }

// Error returns the human-readable message.
func (e *ValidationError) Error() string { return e.message }

// RequestValidationError collects every failed field of a request.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the failed fields.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(ve.errors))
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// APIError mirrors the API error body without importing the api package.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts the validation failure into an API error body.
// Passwords are never echoed back.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.errors) == 0 {
		return &APIError{Code: ErrorCode, Message: "Validation failed"}
	}

	if len(ve.errors) == 1 {
		err := ve.errors[0]
		details := map[string]interface{}{
			"field": err.field,
			"tag":   err.tag,
		}
		if !isSensitive(err.field) {
			details["value"] = err.value
		}
		return &APIError{Code: ErrorCode, Message: err.message, Details: details}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	messages := make([]string, 0, len(ve.errors))
	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
		messages = append(messages, fmt.Sprintf("%s: %s", err.field, err.message))
	}
	return &APIError{
		Code:    ErrorCode,
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

func isSensitive(field string) bool {
	return strings.Contains(strings.ToLower(field), "password")
}

// GetValidator returns the shared validator. Safe for concurrent use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("searchterm", func(fl validator.FieldLevel) bool {
			return searchTermPattern.MatchString(fl.Field().String())
		})

		validate = v
	})
	return validate
}

// ValidateStruct validates s and returns nil or the collected failures.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

// ValidateVar validates a single value against tag, reporting it as field.
func ValidateVar(field string, value interface{}, tag string) *RequestValidationError {
	err := GetValidator().Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return &RequestValidationError{
			errors: []ValidationError{{field: field, tag: "unknown", message: err.Error()}},
		}
	}
	fe := validationErrs[0]
	return &RequestValidationError{errors: []ValidationError{{
		field:   field,
		tag:     fe.Tag(),
		param:   fe.Param(),
		value:   value,
		message: translateMessage(field, fe.Tag(), fe.Param(), fe.Kind() == reflect.String),
	}}}
}

var errorMessageTemplates = map[string]string{
	"required":   "%s is required",
	"email":      "%s must be a valid email address",
	"username":   "%s must be 3-64 characters of letters, digits, '.', '_' or '-', starting with a letter or digit",
	"searchterm": "%s must be 1-100 characters of letters, digits, spaces or basic punctuation",
	"numeric":    "%s must be numeric",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	return translateMessage(fe.Field(), fe.Tag(), fe.Param(), fe.Kind() == reflect.String)
}

func translateMessage(field, tag, param string, isString bool) string {
	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
