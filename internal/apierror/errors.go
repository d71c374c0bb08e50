package apierror

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound             ErrorCode = "NOT_FOUND"
	ErrConflict             ErrorCode = "CONFLICT"
	ErrBadRequest           ErrorCode = "BAD_REQUEST"
	ErrInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrTransitionNotAllowed ErrorCode = "TRANSITION_NOT_ALLOWED"
	ErrInternalServer       ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	if details != nil {
		logrus.Error(details)
	}
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// IsValidation reports whether err is a caller precondition violation, the
// class of failures that surface as 4xx and are never retried.
func IsValidation(err error) bool {
	apiErr, ok := err.(APIError)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case ErrInvalidInput, ErrBadRequest, ErrConflict, ErrNotFound:
		return true
	default:
		return false
	}
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict:
			return http.StatusConflict
		case ErrInvalidInput, ErrBadRequest:
			return http.StatusBadRequest
		case ErrTransitionNotAllowed:
			return http.StatusInternalServerError
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
