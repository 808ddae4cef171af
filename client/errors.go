package client

import (
	"errors"
	"fmt"
)

// ErrEmptyDomain is returned before any request is made.
var ErrEmptyDomain = errors.New("domain is required")

// APIError is a non-2xx response from the report backend.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d", e.StatusCode)
}

// NetworkError is a transport-level failure: DNS, refused connection,
// reset, or a cancelled context.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError is a 2xx response whose body is not a valid report.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed report response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Outcome labels used in logs, metrics and statistics.
const (
	OutcomeSuccess           = "success"
	OutcomeAPIError          = "api_error"
	OutcomeNetworkError      = "network_error"
	OutcomeMalformedResponse = "malformed_response"
	OutcomeInvalidRequest    = "invalid_request"
)

// Outcome classifies the result of FetchReport.
func Outcome(err error) string {
	var (
		apiErr       *APIError
		networkErr   *NetworkError
		malformedErr *MalformedResponseError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	case errors.As(err, &networkErr):
		return OutcomeNetworkError
	case errors.As(err, &malformedErr):
		return OutcomeMalformedResponse
	default:
		return OutcomeInvalidRequest
	}
}
