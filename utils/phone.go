package utils

import (
	"regexp"
	"strings"
)

// whatsappPattern matches Indonesian mobile numbers the way the public API
// accepts them: 08…, 628… or +628… followed by 8 to 12 digits.
var whatsappPattern = regexp.MustCompile(`^(08|628|\+628)[0-9]{8,12}$`)

var nonDigits = regexp.MustCompile(`\D`)

// IsValidWhatsApp reports whether the raw input is an acceptable Indonesian
// mobile number.
func IsValidWhatsApp(phone string) bool {
	return whatsappPattern.MatchString(phone)
}

// NormalizePhone converts any accepted input form to the canonical
// international form (628xxxxxxxxxx) used for storage and lookups.
func NormalizePhone(phone string) string {
	p := nonDigits.ReplaceAllString(phone, "")
	if strings.HasPrefix(p, "0") {
		return "62" + p[1:]
	}
	if !strings.HasPrefix(p, "62") {
		return "62" + p
	}
	return p
}

// LocalizePhone converts a number to the local 08xxx form required by the
// WebSMS gateway.
func LocalizePhone(phone string) string {
	p := nonDigits.ReplaceAllString(phone, "")
	if strings.HasPrefix(p, "62") {
		return "0" + p[2:]
	}
	if !strings.HasPrefix(p, "0") {
		return "0" + p
	}
	return p
}
