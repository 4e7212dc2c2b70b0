package validation

import (
	"strings"
	"testing"

	"github.com/skillsenselab/eventhub/errors"
)

type publishInput struct {
	Type string `json:"type" validate:"required,max=64"`
	Key  string `json:"key" validate:"omitempty,max=255"`
	Data any    `json:"data"`
}

func TestValidateSuccess(t *testing.T) {
	in := publishInput{Type: "conversation", Key: "acme"}
	if err := Validate(in); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	in := publishInput{Key: "acme"}
	err := Validate(in)
	if err == nil {
		t.Fatal("expected error for missing type")
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %q", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "type") {
		t.Errorf("expected field name in message, got %q", appErr.Message)
	}

	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 1 {
		t.Fatalf("expected one field error, got %v", appErr.Details["fields"])
	}
	if fields[0].Field != "type" {
		t.Errorf("expected field 'type', got %q", fields[0].Field)
	}
	if fields[0].Message != "is required" {
		t.Errorf("expected 'is required', got %q", fields[0].Message)
	}
}

func TestValidateMaxLength(t *testing.T) {
	in := publishInput{Type: strings.Repeat("x", 65)}
	err := Validate(in)
	if err == nil {
		t.Fatal("expected error for over-long type")
	}
	if !strings.Contains(err.Error(), "at most 64") {
		t.Errorf("expected max message, got %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Type":         "type",
		"RoutingKey":   "routing_key",
		"ConnectionID": "connection_i_d",
		"data":         "data",
	}
	for in, want := range cases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
