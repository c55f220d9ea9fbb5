package services

import (
	"errors"
	"fmt"
	"net/http"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

var (
	ErrForestRequired  = newServiceError(http.StatusInternalServerError, "ORGCHART_INVALID_CALL", "forest is required", nil)
	ErrNoBuckets       = newServiceError(http.StatusInternalServerError, "ORGCHART_NO_BUCKETS", "classification bucket table is required", nil)
	ErrSourceMissing   = newServiceError(http.StatusServiceUnavailable, "ORGCHART_NO_SOURCE", "record source is not configured", nil)
	ErrImportTargetNil = newServiceError(http.StatusServiceUnavailable, "ORGCHART_NO_IMPORT_TARGET", "record store does not accept imports", nil)
	ErrEmptyImport     = newServiceError(http.StatusBadRequest, "ORGCHART_EMPTY_IMPORT", "import contains no records", nil)
)

// StatusOf maps an error to an HTTP status, defaulting to 500.
func StatusOf(err error) (int, string) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Status, se.Code
	}
	return http.StatusInternalServerError, "ORGCHART_INTERNAL"
}
