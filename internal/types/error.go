package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds carried in CustomError.Type
const (
	KindValidation    = "validation"
	KindUnauthorized  = "authorization.session"
	KindForbidden     = "authorization.forbidden"
	KindNotFound      = "not_found"
	KindConflict      = "conflict"
	KindVersion       = "version"
	KindInternalError = "internal"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func NewValidationError(format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...), Type: KindValidation}
}

func NewUnauthorizedError(message string) *CustomError {
	return &CustomError{Code: http.StatusUnauthorized, Message: message, Type: KindUnauthorized}
}

func NewForbiddenError(format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusForbidden, Message: fmt.Sprintf(format, args...), Type: KindForbidden}
}

func NewNotFoundError(format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusNotFound, Message: fmt.Sprintf(format, args...), Type: KindNotFound}
}

func NewConflictError(format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusConflict, Message: fmt.Sprintf(format, args...), Type: KindConflict}
}

// NewVersionError reports a stale optimistic-lock version
func NewVersionError() *CustomError {
	return &CustomError{
		Code:    http.StatusConflict,
		Message: "E_VERSION - Refresh and reconcile with current version and retry.",
		Type:    KindVersion,
	}
}

// AsCustomError unwraps err into a *CustomError when it is one
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCode reports whether err is a CustomError with the given HTTP code
func HasCode(err error, code int) bool {
	ce, ok := AsCustomError(err)
	return ok && ce.Code == code
}
