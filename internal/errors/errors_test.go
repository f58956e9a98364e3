package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NotFound("shelf not found")
	if !Is(err, ErrNotFound) {
		t.Error("expected NotFound error to match ErrNotFound")
	}
	if Is(err, ErrForbidden) {
		t.Error("NotFound error should not match ErrForbidden")
	}
}

func TestErrorIsMatchesThroughWrapping(t *testing.T) {
	inner := Forbidden("not your shelf")
	wrapped := fmt.Errorf("update shelf: %w", inner)

	if !Is(wrapped, ErrForbidden) {
		t.Error("expected wrapped error to match ErrForbidden")
	}

	var domainErr *Error
	if !As(wrapped, &domainErr) {
		t.Fatal("expected As to extract *Error")
	}
	if domainErr.Code != CodeForbidden {
		t.Errorf("Code: got %q, want %q", domainErr.Code, CodeForbidden)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWithCausePreservesCodeAndUnwraps(t *testing.T) {
	cause := fmt.Errorf("row scan failed")
	err := Internal("load user").WithCause(cause)

	if Unwrap(err) != cause {
		t.Error("expected Unwrap to return the cause")
	}
	if !Is(err, ErrInternal) {
		t.Error("expected wrapped error to still match ErrInternal")
	}
	if want := "load user: row scan failed"; err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}

func TestValidationWithDetails(t *testing.T) {
	details := map[string]string{"rating": "must be less than or equal to 5"}
	err := ValidationWithDetails("validation failed", details)

	if err.Code != CodeValidation {
		t.Errorf("Code: got %q, want %q", err.Code, CodeValidation)
	}
	got, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatal("expected Details to be a map[string]string")
	}
	if got["rating"] != details["rating"] {
		t.Errorf("Details[rating]: got %q, want %q", got["rating"], details["rating"])
	}
}
