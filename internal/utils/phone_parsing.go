package utils

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone formats a phone number as E.164 using region for numbers
// without a country prefix. Unparseable or invalid numbers are returned trimmed
// with ok set to false.
func NormalizePhone(phone, region string) (normalized string, ok bool) {
	clean := strings.TrimSpace(phone)
	if clean == "" {
		return "", false
	}

	num, err := phonenumbers.Parse(clean, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return clean, false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
