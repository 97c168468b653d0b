package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidInput, "bad id %q", "x"), `INVALID_INPUT: bad id "x"`},
		{Wrap(ErrCodeInvalidDocument, errors.New("unexpected EOF"), "decode %s", "d.json"), "INVALID_DOCUMENT: decode d.json: unexpected EOF"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "save")
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
}

func TestIsAndGetCode(t *testing.T) {
	unknown := New(ErrCodeUnknownEntity, "no entity %q", "Z")
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"direct", unknown, ErrCodeUnknownEntity},
		{"fmt wrapped", fmt.Errorf("event 3 (move): %w", unknown), ErrCodeUnknownEntity},
		{"outermost wins", Wrap(ErrCodeInternal, unknown, "apply"), ErrCodeInternal},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(%v, %s) = false", tt.err, tt.want)
			}
			if Is(tt.err, ErrCodeConflict) {
				t.Errorf("Is(%v, CONFLICT) = true", tt.err)
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		code Code
		want Category
	}{
		{ErrCodeInvalidInput, CategoryInvalid},
		{ErrCodeInvalidGeometry, CategoryInvalid},
		{ErrCodeInvalidEvent, CategoryInvalid},
		{ErrCodeNotFound, CategoryMissing},
		{ErrCodeUnknownEntity, CategoryMissing},
		{ErrCodeFileNotFound, CategoryMissing},
		{ErrCodeConflict, CategoryConflict},
		{ErrCodeUnsupported, CategoryUnsupported},
		{ErrCodeInternal, CategoryInternal},
		{"SOMETHING_ELSE", CategoryInternal},
	}
	for _, tt := range tests {
		if got := tt.code.Category(); got != tt.want {
			t.Errorf("%s.Category() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(fmt.Errorf("ctx: %w", New(ErrCodeInvalidInput, "friendly"))); got != "friendly" {
		t.Errorf("UserMessage() = %q, want %q", got, "friendly")
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain")
	}
}
