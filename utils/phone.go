package utils

import (
	"regexp"
	"strings"
)

var (
	nonDigitRegex   = regexp.MustCompile(`\D`)
	extensionRegex  = regexp.MustCompile(`(?i)(?:ext\.?|x|xt|extension)\s*\.?:?\s*(\d{1,6})`)
	phoneQueryRegex = regexp.MustCompile(`^[\d\s()+.\-]*\d[\d\s()+.\-]*$`)
)

// PhoneDigits strips every non-digit character
func PhoneDigits(phone string) string {
	return nonDigitRegex.ReplaceAllString(phone, "")
}

// IsPhoneQuery reports whether a search string is made only of digits and phone punctuation
func IsPhoneQuery(q string) bool {
	return phoneQueryRegex.MatchString(strings.TrimSpace(q))
}

// NormalizePhone converts free-form input into "+" followed by digits.
// Ten digits are treated as a North American number without country code.
func NormalizePhone(phone string) string {
	cleaned := PhoneDigits(phone)
	switch {
	case len(cleaned) == 10:
		return "+1" + cleaned
	case len(cleaned) == 11 && cleaned[0] == '1':
		return "+" + cleaned
	case cleaned == "":
		return ""
	default:
		return "+" + cleaned
	}
}

// FormatDisplayPhone renders a stored phone as "(AAA) PPP - LLLL" with an optional " ext. N".
// Inputs with fewer than ten digits are returned trimmed and otherwise untouched.
func FormatDisplayPhone(raw string) string {
	if raw == "" {
		return ""
	}

	ext := ""
	base := raw
	if loc := extensionRegex.FindStringSubmatchIndex(raw); loc != nil {
		ext = raw[loc[2]:loc[3]]
		base = raw[:loc[0]] + raw[loc[1]:]
	}

	digits := PhoneDigits(base)
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	if len(digits) < 10 {
		return strings.TrimSpace(raw)
	}

	out := "(" + digits[0:3] + ") " + digits[3:6] + " - " + digits[6:10]
	if ext != "" {
		out += " ext. " + ext
	}
	return out
}

// DialURI builds the tel: link handed to the operating system dialer
func DialURI(phone string) string {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return ""
	}
	return "tel:" + normalized
}
