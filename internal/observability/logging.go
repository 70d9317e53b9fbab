package observability

import (
	"strings"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskCedula keeps only the last three digits of a national ID
func MaskCedula(cedula string) string {
	if len(cedula) < 6 {
		return "******"
	}
	return strings.Repeat("*", len(cedula)-3) + cedula[len(cedula)-3:]
}

// MaskEmail keeps the first character of the local part and the domain
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskPhone keeps the last four digits of a phone number
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
