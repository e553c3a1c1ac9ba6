package slug

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Summer Sale 2026!", "summer-sale-2026"},
		{"  Hello   World  ", "hello-world"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER case", "upper-case"},
		{"special/chars?&#", "specialchars"},
		{"--leading and trailing--", "leading-and-trailing"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
