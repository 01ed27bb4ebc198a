// Package web defines common components for a web application.
package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// ErrMalformedBody indicates a request body that cannot be decoded.
var ErrMalformedBody = errorspkg.New(errorspkg.ErrValidation, "malformed request body")

// Response holds the common error response type for all APIs.
type Response struct {
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Error wraps a given err into json friendly struct.
//
// Errors outside of the known categories are reported as internal without details.
func Error(err error) Response {
	code := errorspkg.Code(err)
	if code == errorspkg.CodeInternal {
		return Response{Error: errorspkg.ErrInternal.Error(), Code: code}
	}

	return Response{Error: err.Error(), Code: code}
}

// StatusCode returns the http status for err's category.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, errorspkg.ErrValidation),
		errors.Is(err, errorspkg.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, errorspkg.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errorspkg.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errorspkg.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// BindError converts a gin binding error into a validation response.
func BindError(err error) Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		field := ve[0]
		return Response{Error: field.Field() + GetErrorMsg(field), Code: errorspkg.CodeValidation}
	}

	return Response{Error: ErrMalformedBody.Error(), Code: errorspkg.CodeValidation}
}

// GetErrorMsg returns the message suffix for the failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "notblank":
		return " must not be blank"
	case "max":
		return fmt.Sprintf(" must be at most %s characters long", fe.Param())
	case "min":
		return fmt.Sprintf(" must be at least %s characters long", fe.Param())
	}

	return " is invalid"
}
