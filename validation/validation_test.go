package validation

import (
	"testing"

	"github.com/scribely/scribely/errors"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

func TestValidatePasses(t *testing.T) {
	if err := Validate(sample{Email: "user@example.com", Password: "long enough"}); err != nil {
		t.Errorf("Validate rejected valid input: %v", err)
	}
}

func TestValidateCollectsFieldErrors(t *testing.T) {
	err := Validate(sample{Email: "nope", Password: "short"})
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("got %v, want an AppError", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("Code = %s, want %s", appErr.Code, errors.ErrCodeInvalidInput)
	}

	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("details.fields has unexpected type: %T", appErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("len(fields) = %d, want 2", len(fields))
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Email":        "email",
		"PasswordHash": "password_hash",
		"ID":           "i_d",
		"already":      "already",
	}
	for input, want := range cases {
		if got := toSnakeCase(input); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", input, got, want)
		}
	}
}
