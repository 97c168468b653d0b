package errors

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/relink/pkg/geometry"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "class-1", false},
		{"valid uuid", "0b6c3f0e-7f3a-4d3b-9d54-5d7f2a9c1e11", false},
		{"valid with dot", "diagram.v2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true},
		{"path traversal", "..", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid file", "diagram.json", false},
		{"valid nested", "diagrams/class.json", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "diagrams/../../secret", true},
		{"backslash", "diagrams\\x.json", true},
		{"control char", "x\x01.json", true},
		{"too long", strings.Repeat("a", 501), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		b       geometry.Bounds
		wantErr bool
	}{
		{"valid", geometry.Bounds{X: -5, Y: 10, Width: 20, Height: 0}, false},
		{"nan", geometry.Bounds{X: math.NaN(), Width: 1, Height: 1}, true},
		{"inf", geometry.Bounds{Width: math.Inf(1), Height: 1}, true},
		{"negative width", geometry.Bounds{Width: -1, Height: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBounds(tt.b)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBounds(%+v) error = %v, wantErr %v", tt.b, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidGeometry) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidGeometry)
			}
		})
	}
}

func TestValidateDirection(t *testing.T) {
	for _, d := range []geometry.Direction{geometry.Auto, geometry.Up, geometry.Left} {
		if err := ValidateDirection(d); err != nil {
			t.Errorf("ValidateDirection(%q) = %v", d, err)
		}
	}
	if err := ValidateDirection("North"); err == nil {
		t.Error("ValidateDirection(North) = nil, want error")
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("SVG", "dot", "svg"); err != nil {
		t.Errorf("ValidateFormat(SVG) = %v", err)
	}
	err := ValidateFormat("png", "dot", "svg")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(png) = %v, want %v", err, ErrCodeInvalidFormat)
	}
}
