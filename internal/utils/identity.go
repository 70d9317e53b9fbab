package utils

import (
	"regexp"
	"strings"
)

var (
	cedulaRegex = regexp.MustCompile(`^\d{6,10}$`)
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// NormalizeCedula strips separators people type into a national ID
func NormalizeCedula(cedula string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', ' ', '\t':
			return -1
		}
		return r
	}, cedula)
}

// IsValidCedula reports whether a normalized cedula has 6 to 10 digits
func IsValidCedula(cedula string) bool {
	return cedulaRegex.MatchString(cedula)
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail validates the shape of a normalized email address
func IsValidEmail(email string) bool {
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	return !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".") && !strings.Contains(domain, "..")
}

// CollapseSpaces trims a name and reduces inner whitespace runs to one space
func CollapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// JoinName builds a canonical full name from its parts, skipping empty ones
func JoinName(parts ...string) string {
	return CollapseSpaces(strings.Join(parts, " "))
}
