package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected int
	}{
		{name: "validation", err: Validation("Missing type"), expected: http.StatusBadRequest},
		{name: "not found", err: NotFound("Not found"), expected: http.StatusNotFound},
		{name: "conflict", err: Conflict("Subject already exists"), expected: http.StatusConflict},
		{name: "unauthorized", err: Unauthorized("Unauthorized"), expected: http.StatusUnauthorized},
		{name: "upstream", err: Upstream("discord unavailable", nil), expected: http.StatusBadGateway},
		{name: "database", err: Database(errors.New("connection refused")), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.expected {
				t.Errorf("Status() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestFrom_WrappedErrorKeepsKind(t *testing.T) {
	wrapped := fmt.Errorf("lookup failed: %w", NotFound("Subject not found"))

	appErr := From(wrapped)
	if appErr.Kind != KindNotFound {
		t.Fatalf("expected KindNotFound, got %d", appErr.Kind)
	}
	if appErr.Message != "Subject not found" {
		t.Fatalf("expected message %q, got %q", "Subject not found", appErr.Message)
	}
}

func TestFrom_PlainErrorBecomesDatabase(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")

	appErr := From(cause)
	if appErr.Kind != KindDatabase {
		t.Fatalf("expected KindDatabase, got %d", appErr.Kind)
	}
	if appErr.Message != cause.Error() {
		t.Fatalf("expected message %q, got %q", cause.Error(), appErr.Message)
	}
	if !errors.Is(appErr, cause) {
		t.Fatal("expected database error to unwrap to its cause")
	}
	if From(nil) != nil {
		t.Fatal("expected From(nil) to be nil")
	}
}
