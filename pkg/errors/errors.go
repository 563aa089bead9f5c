package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string         `json:"error"`
	Message    string         `json:"message"`
	StatusCode int            `json:"-"`
	Details    map[string]any `json:"-"`
	Internal   error          `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches AppErrors by code so sentinel comparisons survive copies.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy of the AppError carrying a different client message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Message = message
	return &cpy
}

// WithDetail returns a copy of the AppError with an extra response field attached.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cpy.Details[k] = v
	}
	cpy.Details[key] = value
	return &cpy
}

// WithStatus returns a copy of the AppError rendered with a different HTTP status.
func (e *AppError) WithStatus(status int) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.StatusCode = status
	return &cpy
}

// Error codes surfaced to clients.
const (
	CodeRateLimited      = "rate_limited"
	CodeUpstreamError    = "upstream_error"
	CodeBadStatus        = "bad_status"
	CodeTimeout          = "timeout"
	CodeRequestException = "request_exception"
	CodeValidation       = "validation_error"
	CodeCaptchaRequired  = "captcha_required"
	CodeCaptchaFailed    = "captcha_failed"
	CodeDuplicate        = "duplicate"
	CodeNotFound         = "not_found"
	CodeServerError      = "server_error"
	CodeBadRequest       = "bad_request"
)

// Common errors exposed to the rest of the application.
var (
	ErrNotFound = &AppError{
		Code:       CodeNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       CodeBadRequest,
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       CodeServerError,
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       CodeRateLimited,
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}

	ErrValidation = &AppError{
		Code:       CodeValidation,
		Message:    "Please check the highlighted fields",
		StatusCode: http.StatusBadRequest,
	}

	ErrCaptchaRequired = &AppError{
		Code:       CodeCaptchaRequired,
		Message:    "Please complete the verification challenge",
		StatusCode: http.StatusBadRequest,
	}

	ErrCaptchaFailed = &AppError{
		Code:       CodeCaptchaFailed,
		Message:    "Verification failed, please try again",
		StatusCode: http.StatusBadRequest,
	}

	ErrDuplicate = &AppError{
		Code:       CodeDuplicate,
		Message:    "This message was already sent",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       CodeServerError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps malformed payload errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}
