package validation

import (
	"reflect"
	"testing"
)

func TestCleanEmailList(t *testing.T) {
	got := CleanEmailList([]string{" Bob@Example.com", "bob@example.com", "", "nope", "carol@example.org "})
	want := []string{"bob@example.com", "carol@example.org"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestStringValidation(t *testing.T) {
	tests := []struct {
		name string
		v    *StringValidation
		want bool
	}{
		{"required blank", NewStringValidation("  "), false},
		{"optional blank", NewStringValidation("").WithRequired(false), true},
		{"within bounds", NewStringValidation("Alice").WithMinLength(2).WithMaxLength(5), true},
		{"too long in runes", NewStringValidation("Çağrıcı").WithMaxLength(6), false},
		{"multibyte fits", NewStringValidation("Çağrı").WithMaxLength(5), true},
		{"too short", NewStringValidation("A").WithMinLength(NameMinLength), false},
		{"pattern", NewStringValidation("12345678").WithPattern(CompiledPatterns.Username), true},
		{"pattern mismatch", NewStringValidation("1234abcd").WithPattern(CompiledPatterns.Username), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Validate(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
