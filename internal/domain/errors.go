package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed upstream response")
	ErrEmptyResponse       = errors.New("empty upstream response")

	ErrTokenIDRequired = errors.New("token id is required")
	ErrInvalidAmount   = errors.New("amount must be a non-negative number")
	ErrZeroRate        = errors.New("rate must be positive")
)

// UpstreamError carries the HTTP status of a failed upstream call.
// It unwraps to one of the sentinel errors above.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
