package failure

import (
	"errors"
	"net/http"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var InvalidModeParam = &Failure{Code: http.StatusBadRequest, Message: "invalid restore mode"}
var InvalidTargetParam = &Failure{Code: http.StatusBadRequest, Message: "invalid restore target"}
var OverwriteNotConfirmed = &Failure{Code: http.StatusBadRequest, Message: "overwrite mode requires explicit confirmation"}
var RawWriteOutsideSandbox = &Failure{Code: http.StatusBadRequest, Message: "raw (non-normalized) writes are only allowed into a restore sandbox"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

// Error returns the error message of the failure.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

// MalformedRecord returns a new Failure for a record that is not a JSON object
// or cannot be mapped onto the reservation schema.
func MalformedRecord(msg string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: msg,
	}
}

// StorageAuth returns a new Failure for a storage permission error. These are
// fatal: treating them as "not found" could let a restore overwrite keys it
// cannot actually see.
func StorageAuth(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadGateway,
			Message: "storage access denied: " + err.Error(),
		}
	}

	return nil
}

// IsStorageAuth reports whether err carries the storage permission failure code.
func IsStorageAuth(err error) bool {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code == http.StatusBadGateway
	}

	return false
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
