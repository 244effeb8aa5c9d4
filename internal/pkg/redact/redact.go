// Package redact shortens secrets before they reach logs or error messages.
package redact

import "strings"

const visibleTokenPrefix = 6

// Token keeps a short prefix so log lines for the same deferred payment can be
// correlated without exposing a usable token.
func Token(token string) string {
	if len(token) <= visibleTokenPrefix {
		return strings.Repeat("*", len(token))
	}
	return token[:visibleTokenPrefix] + "…"
}

// CardNumber returns only the last four digits.
func CardNumber(number string) string {
	digits := make([]rune, 0, len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return "****"
	}
	return "****" + string(digits[len(digits)-4:])
}
