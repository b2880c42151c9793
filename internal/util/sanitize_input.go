package util

import (
	"html"
	"strings"
)

// SanitizeInput escapes HTML/script-like characters
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return html.EscapeString(s)
}

// SanitizeIdentity normalizes an employee id or display name coming from an
// untrusted CSV upload or query parameter. Control characters are stripped
// before escaping so log lines stay single-line.
func SanitizeIdentity(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return SanitizeInput(s)
}

// ContainsSuspicious reports whether a free-form field carries injection-like
// fragments. Used to reject identity fields, not to sanitize them.
func ContainsSuspicious(s string) bool {
	badChars := []string{"<", ">", "$", "{", "}", "script", "onerror", "onload"}
	for _, c := range badChars {
		if strings.Contains(strings.ToLower(s), c) {
			return true
		}
	}
	return false
}
