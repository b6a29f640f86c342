package hexcolor

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"#FFDD00", "#FFDD00"},
		{"FFDD00", "#FFDD00"},
		{"  #aabbcc ", "#aabbcc"},
		{"", ""},
		{"#FFF", ""},
		{"#GGGGGG", ""},
		{"red", ""},
		{"#FFDD001", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDarken(t *testing.T) {
	if got := Darken("#ffffff", 0.1); got != "#e5e5e5" {
		t.Errorf("Darken(#ffffff, 0.1) = %q, want #e5e5e5", got)
	}
	if got := Darken("#000000", 0.1); got != "#000000" {
		t.Errorf("Darken(#000000, 0.1) = %q, want #000000", got)
	}
	// Invalid input passes through untouched.
	if got := Darken("nope", 0.1); got != "nope" {
		t.Errorf("Darken(nope) = %q, want nope", got)
	}
}
