// Package hexcolor validates and transforms #RRGGBB color strings used
// in report formatting.
package hexcolor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsHex reports whether s is a 6-digit hex color with a leading '#'.
func IsHex(s string) bool {
	return hexPattern.MatchString(s)
}

// Normalize returns s as "#RRGGBB", adding a missing '#' prefix.
// Returns "" for anything that is not a valid 6-digit hex color.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if !hexPattern.MatchString(s) {
		return ""
	}
	return s
}

// Darken scales each RGB channel of a valid hex color down by factor
// (0..1). Invalid input is returned unchanged.
func Darken(hex string, factor float64) string {
	if !IsHex(hex) || factor <= 0 {
		return hex
	}
	out := make([]byte, 0, 7)
	out = append(out, '#')
	for i := 1; i < 7; i += 2 {
		c, _ := strconv.ParseUint(hex[i:i+2], 16, 8)
		scaled := int(float64(c) * (1 - factor))
		if scaled < 0 {
			scaled = 0
		}
		out = append(out, fmt.Sprintf("%02x", scaled)...)
	}
	return string(out)
}
