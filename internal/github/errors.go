package github

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
)

// Kind classifies a failed upstream fetch.
type Kind string

const (
	KindRateLimited      Kind = appErrors.CodeRateLimited
	KindUpstreamError    Kind = appErrors.CodeUpstreamError
	KindBadStatus        Kind = appErrors.CodeBadStatus
	KindTimeout          Kind = appErrors.CodeTimeout
	KindRequestException Kind = appErrors.CodeRequestException
)

// FetchError is the typed result of a failed repository listing. Status holds
// the upstream HTTP status, or the gateway status for transport failures.
type FetchError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("github %s (%d): %s: %v", e.Kind, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("github %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindUpstreamError, KindTimeout, KindRequestException:
		return true
	default:
		return false
	}
}

// HTTPStatus maps the failure to the status returned to API clients.
func (e *FetchError) HTTPStatus() int {
	switch e.Kind {
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindRequestException:
		return http.StatusBadGateway
	}
	if e.Status >= 400 {
		return e.Status
	}
	return http.StatusBadGateway
}

// AppError converts the failure into the API error envelope.
func (e *FetchError) AppError() *appErrors.AppError {
	return appErrors.New(string(e.Kind), e.Message, e.HTTPStatus()).WithInternal(e)
}

// AsFetchError extracts a FetchError from err.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func transportError(err error) *FetchError {
	if isTimeout(err) {
		return &FetchError{
			Kind:    KindTimeout,
			Status:  http.StatusGatewayTimeout,
			Message: "Request timed out",
			Err:     err,
		}
	}
	return &FetchError{
		Kind:    KindRequestException,
		Status:  http.StatusBadGateway,
		Message: err.Error(),
		Err:     err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
