package domain

import (
	"testing"
)

func TestErrNotFound_Error(t *testing.T) {
	err := &ErrNotFound{
		Entity: "subscription",
		ID:     "12345",
	}

	expected := "subscription not found with ID: 12345"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("target_url is required")

	expected := "validation error: target_url is required"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestErrDeliveryTransport_Error(t *testing.T) {
	inner := &ErrDeliveryHTTP{TargetURL: "https://example.com", StatusCode: 503}
	err := &ErrDeliveryTransport{TargetURL: "https://example.com/hook", Err: inner}

	if err.Unwrap() != inner {
		t.Error("expected Unwrap to return the wrapped error")
	}
	if err.Error() == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestErrDeliveryHTTP_Error(t *testing.T) {
	err := &ErrDeliveryHTTP{TargetURL: "https://example.com/hook", StatusCode: 503}

	expected := "HTTP 503"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}
