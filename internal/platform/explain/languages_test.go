package explain

import (
	"errors"
	"testing"
)

func TestValidateLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"hi", "hi", true},
		{"HI", "hi", true},
		{" ta ", "ta", true},
		{"cy", "cy", true},
		{"en", "en", true},
		{"xx", "", false},
		{"", "", false},
		{"hin", "", false},
	}
	for _, tt := range tests {
		got, err := ValidateLanguage(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ValidateLanguage(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if !errors.Is(err, ErrUnsupportedLanguage) {
				t.Errorf("ValidateLanguage(%q) expected ErrUnsupportedLanguage, got %v", tt.in, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSupportedLanguageCount(t *testing.T) {
	if n := SupportedLanguageCount(); n != 60 {
		t.Errorf("expected 60 supported languages, got %d", n)
	}
}

func TestLanguageName(t *testing.T) {
	if LanguageName("ml") != "Malayalam" {
		t.Errorf("expected Malayalam, got %s", LanguageName("ml"))
	}
	if LanguageName("sw") != "sw" {
		t.Errorf("expected code fallback, got %s", LanguageName("sw"))
	}
	if nativeLanguageName("sw") != "SW language" {
		t.Errorf("expected upper-case fallback, got %s", nativeLanguageName("sw"))
	}
}

func TestTraditionalSystemName(t *testing.T) {
	if got := traditionalSystemName("Unani", "ur"); got != "یونانی طب" {
		t.Errorf("unexpected Urdu name: %s", got)
	}
	if got := traditionalSystemName("Unani", "fr"); got != "Unani Medicine" {
		t.Errorf("expected default name, got %s", got)
	}
	if got := traditionalSystemName("Homeopathy", "hi"); got != "Homeopathy" {
		t.Errorf("expected passthrough, got %s", got)
	}
}
