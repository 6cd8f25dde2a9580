package askclient

import (
	"errors"
	"fmt"
)

// ServiceError is returned when the service answers with a non-2xx status.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("service error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("service error: status %d: %s", e.StatusCode, e.Body)
}

// NetworkError is returned when the service could not be reached at all.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsServiceError reports whether err is, or wraps, a *ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// IsNetworkError reports whether err is, or wraps, a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
