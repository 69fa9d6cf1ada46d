package messaging

import "strings"

// NormalizeE164 ensures the value begins with + and only contains digits afterward.
func NormalizeE164(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	digits := sanitizePhone(value)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

func sanitizePhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LastFour returns the trailing four digits of a phone number, or the whole
// digit string when shorter. Used for auto-provisioned display names.
func LastFour(value string) string {
	digits := sanitizePhone(value)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
