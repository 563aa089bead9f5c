package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
	if !stdErrors.Is(err, internal) {
		t.Fatal("expected wrapped error to unwrap to the internal error")
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	detailed := ErrValidation.WithDetail("fields", []string{"message"})

	if ErrValidation.Details != nil {
		t.Fatal("expected sentinel details to stay empty")
	}
	if got := detailed.Details["fields"].([]string); len(got) != 1 || got[0] != "message" {
		t.Fatalf("unexpected details: %v", detailed.Details)
	}
	if !stdErrors.Is(detailed, ErrValidation) {
		t.Fatal("expected copies to match the sentinel by code")
	}
}

func TestWithStatus(t *testing.T) {
	err := ErrRateLimit.WithStatus(http.StatusForbidden)
	if err.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
	if ErrRateLimit.StatusCode != http.StatusTooManyRequests {
		t.Fatal("expected sentinel status to be unchanged")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != CodeServerError {
		t.Fatalf("expected server error code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid payload")
	if err.Code != ErrBadRequest.Code {
		t.Fatalf("expected %s, got %s", ErrBadRequest.Code, err.Code)
	}
	if err.Message != "invalid payload" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if err.StatusCode != ErrBadRequest.StatusCode {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
}
