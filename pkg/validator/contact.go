package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPhone indicates the phone number is empty.
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidPhoneLength indicates the phone number is not 9 digits.
	ErrInvalidPhoneLength = errors.New("phone number must be exactly 9 digits")

	// ErrInvalidPhonePrefix indicates the phone number does not start with 7 or 9.
	ErrInvalidPhonePrefix = errors.New("phone number must start with 7 or 9")

	// ErrInvalidPhoneFormat indicates the phone number contains non-digit characters.
	ErrInvalidPhoneFormat = errors.New("phone number can only contain digits")

	// ErrInvalidName indicates the name is shorter than two characters.
	ErrInvalidName = errors.New("name must be at least 2 characters")

	// ErrInvalidEmail indicates the email address is malformed.
	ErrInvalidEmail = errors.New("invalid email address")
)

var (
	digitsRegex = regexp.MustCompile(`^\d+$`)
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// SanitizePhone strips spaces, dashes, and the Ethiopian country code or
// leading zero, leaving the 9-digit local form.
func SanitizePhone(phone string) string {
	s := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	switch {
	case strings.HasPrefix(s, "+251"):
		s = s[4:]
	case strings.HasPrefix(s, "251") && len(s) == 12:
		s = s[3:]
	case strings.HasPrefix(s, "0") && len(s) == 10:
		s = s[1:]
	}
	return s
}

// ValidatePhone validates a local Ethiopian mobile number: 9 digits starting
// with 7 or 9. Returns the sanitized form.
func ValidatePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	s := SanitizePhone(phone)
	if !digitsRegex.MatchString(s) {
		return "", ErrInvalidPhoneFormat
	}
	if len(s) != 9 {
		return "", ErrInvalidPhoneLength
	}
	if s[0] != '7' && s[0] != '9' {
		return "", ErrInvalidPhonePrefix
	}
	return s, nil
}

// ValidateName requires at least two non-space characters.
func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return ErrInvalidName
	}
	return nil
}

// ValidateEmail applies a pragmatic RFC-style format check.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}
