package telephony

import "strings"

// FormatE164 converts a loosely formatted phone number to E.164.
//
// Rules (NANP-biased, matching how patient numbers are captured upstream):
// - 10 digits: assume US, prefix +1
// - 11 digits starting with 1: prefix +
// - input already starting with +: returned with non-digits stripped
// - anything else: + plus the digits
//
// The empty string maps to the empty string; validation belongs to callers.
func FormatE164(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits
	default:
		return "+" + digits
	}
}

// IsE164 reports whether s looks like an E.164 number.
func IsE164(s string) bool {
	if len(s) < 8 || len(s) > 16 || s[0] != '+' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
