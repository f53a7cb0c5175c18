// Package room extracts canonical room codes from free-text location fields.
package room

import "regexp"

// Room codes are one uppercase letter followed by three digits, e.g. "N301".
// Location strings are free text ("Raum N301 (groß)", "Building H / H205"),
// so we take the leftmost match and ignore the rest.
var codePattern = regexp.MustCompile(`[A-Z][0-9]{3}`)

// Extract returns the first room code found in s, or ok=false when s is
// empty or contains none.
func Extract(s string) (code string, ok bool) {
	if s == "" {
		return "", false
	}
	m := codePattern.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}
