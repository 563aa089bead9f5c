package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type testPayload struct {
	Name  string `json:"name" validate:"min=2"`
	Email string `json:"email" validate:"simple_email"`
	Age   int    `json:"age" validate:"gte=18"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Name:  "Al",
		Email: "alice@example.com",
		Age:   20,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		Name:  "A",
		Email: "invalid@",
		Age:   10,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	fields := vErrs.Fields()
	if len(fields) != 3 || fields[0] != "name" || fields[1] != "email" || fields[2] != "age" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestValidateVarUsesFieldName(t *testing.T) {
	err := ValidateVar("message", "too short", "min=20")
	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if vErrs[0].Field != "message" || vErrs[0].Tag != "min" || vErrs[0].Param != "20" {
		t.Fatalf("unexpected failure: %+v", vErrs[0])
	}

	if err := ValidateVar("message", "this message is long enough", "min=20"); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestIsSimpleEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.co":            true,
		" user@example.com": true,
		"no-at-sign.com":    false,
		"two@@example.com":  false,
		"spaces in@x.com":   false,
		"missing@tld":       false,
	}
	for input, want := range cases {
		if got := IsSimpleEmail(input); got != want {
			t.Fatalf("IsSimpleEmail(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("portfolio", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "portfolio"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"portfolio"`
	}

	if err := ValidateStruct(custom{Value: "portfolio"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "other"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}
