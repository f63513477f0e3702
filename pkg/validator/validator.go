package validator

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	phoneRegex  = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	handleRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_.\-]{2,31}$`)
)

func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(cleanPhone(phone))
}

// ValidateHandle проверяет адрес страницы мастера: латиница, цифры, точки,
// дефисы и подчёркивания, от 3 до 32 символов.
func ValidateHandle(handle string) bool {
	return handleRegex.MatchString(handle)
}

func ValidateNamePart(name string) bool {
	if len(name) < 2 {
		return false
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && r != '-' && r != ' ' && r != '\'' {
			return false
		}
	}

	return true
}

// FormatPhone нормализует телефон к виду +7XXXXXXXXXX.
func FormatPhone(phone string) string {
	p := cleanPhone(phone)

	if !strings.HasPrefix(p, "+") {
		if strings.HasPrefix(p, "8") {
			p = "+7" + p[1:]
		} else if !strings.HasPrefix(p, "7") {
			p = "+7" + p
		} else {
			p = "+" + p
		}
	}

	return p
}

func cleanPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, phone)
}

func SanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' || r == '&' || r == '"' || r == '\'' || r == '`' || r == ';' {
			return -1
		}
		return r
	}, s)
}
